package sessionbuilder

import "errors"

var ErrNameInUse = errors.New("sessionbuilder.name_in_use")
