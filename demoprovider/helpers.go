package demoprovider

import "github.com/schell/teleform/cell"

func localString(s string) cell.Local[string] { return cell.NewLocal(s) }
func localBool(b bool) cell.Local[bool]        { return cell.NewLocal(b) }
func knownString(s string) cell.Remote[string] { return cell.Known(s) }
func ofString(s string) cell.Input[string]     { return cell.Of(s) }
