package entity

import (
	"strconv"

	"github.com/samber/lo"
)

// ID is the external form of a history record's numeric database key.
type ID string

func NewID(id uint) ID {
	return ID(strconv.FormatUint(uint64(id), 10))
}

func (id ID) String() string { return string(id) }
func (id ID) Uint() uint     { return uint(lo.Must(strconv.ParseUint(id.String(), 10, 64))) }
