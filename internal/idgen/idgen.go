// Package idgen produces the identifiers used throughout the catalog:
// record ids (time component plus random suffix) and object-storage keys.
package idgen

import (
	"fmt"
	"strconv"
	"time"

	"filedeck/internal/common"
	"github.com/google/uuid"
)

// New returns a collision-resistant string id: the current Unix
// milliseconds in base 36 followed by a random hex suffix. Ids generated
// in the same millisecond differ in the suffix.
func New() (string, error) {
	suffix, err := common.MakeRandHexString(6)
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(time.Now().UnixMilli(), 36) + "-" + suffix, nil
}

// StorageKey returns a date-partitioned object-storage key:
// users/<year>/<month>/<day>/<uuid>.
func StorageKey() string {
	d := time.Now().UTC()
	return fmt.Sprintf("users/%d/%d/%d/%v", d.Year(), int(d.Month()), d.Day(), uuid.New())
}
