package providers

import (
	"errors"
	"fmt"
	"slices"

	"birdsong/internal/models"
	"birdsong/internal/structures"

	"github.com/gookit/validate"
)

type CnfValidator struct {
	conf *structures.Config
}

func NewCnfValidator(conf *structures.Config) *CnfValidator {
	return &CnfValidator{conf: conf}
}

// Validate checks struct tag rules first, then the cross-field constraints.
func (v *CnfValidator) Validate() error {
	vd := validate.Struct(v.conf)
	if !vd.Validate() {
		return vd.Errors
	}

	if v.conf.Preferences.Backend != "memory" && v.conf.Preferences.Path == "" {
		return errors.New("preferences.path is required for the file and sqlite backends")
	}
	for _, b := range v.conf.Timeline.AllowedBuckets {
		if b <= 0 {
			return fmt.Errorf("timeline.allowedBuckets contains non-positive value %d", b)
		}
	}
	if !slices.Contains(v.conf.Timeline.AllowedBuckets, models.DefaultBucketMinutes) {
		return fmt.Errorf("timeline.allowedBuckets must contain the default bucket size %d", models.DefaultBucketMinutes)
	}
	return nil
}
