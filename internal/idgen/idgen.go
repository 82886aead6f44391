// Package idgen assigns identifiers and creation timestamps to new records.
package idgen

import (
	"encoding/binary"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// TimestampLayout is millisecond-precision ISO-8601, the format browsers produce with
// Date.toISOString, so records written by older clients sort and parse alike.
const TimestampLayout = "2006-01-02T15:04:05.000Z07:00"

// NewID returns a probabilistically unique identifier made of two base-36 fragments.
// Uniqueness is only ever checked by scanning a collection; it is not a security token.
func NewID() string {
	u := uuid.New()
	hi := binary.BigEndian.Uint64(u[:8])
	lo := binary.BigEndian.Uint64(u[8:])
	return strconv.FormatUint(hi, 36) + strconv.FormatUint(lo, 36)
}

// Now returns the current UTC time as an ISO-8601 string.
func Now() string {
	return Timestamp(time.Now())
}

// Timestamp formats t in UTC using TimestampLayout.
func Timestamp(t time.Time) string {
	return t.UTC().Format(TimestampLayout)
}
