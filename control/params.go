// Package control carries the operator's parameter record from the control
// plane to the scan loops.
package control

import (
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
)

const (
	MinSimulations  = 1
	MaxSimulations  = 64
	MaxMovementMode = 5
)

// Params is one complete menu record. Records replace each other wholesale.
//
// The movement toggles and MovementMode are accepted so existing menu clients
// keep working, but nothing writes them into the target.
type Params struct {
	Prediction     bool    `json:"prediction"`
	Treasure       bool    `json:"treasure"`
	XMaps          bool    `json:"xMaps"`
	Riddles        bool    `json:"riddles"`
	FOVMultiplier  float32 `json:"fovMultiplier" binding:"gt=0,lte=4"`
	MaxSimulations int32   `json:"maxSimNum" binding:"min=1,max=64"`
	MovementMode   uint8   `json:"movementMode" binding:"max=5"`
	InstantLadder  bool    `json:"instantLadder"`
	ExtendedReach  bool    `json:"extendedReach"`
	IncreaseSpeed  bool    `json:"increaseSpeed"`
	ForceMovement  bool    `json:"forceMovement"`
}

func Defaults() Params {
	return Params{
		Prediction:     true,
		Treasure:       true,
		XMaps:          true,
		FOVMultiplier:  1.22,
		MaxSimulations: 8,
		MovementMode:   4,
	}
}

var validate = newValidator()

// newValidator reads the same struct tags the HTTP binding does.
func newValidator() *validator.Validate {
	v := validator.New()
	v.SetTagName("binding")
	return v
}

// Validate applies the bounds the HTTP binding enforces, for records that
// arrive from config instead of the wire.
func (p Params) Validate() error {
	if err := validate.Struct(p); err != nil {
		var fields validator.ValidationErrors
		if errors.As(err, &fields) && len(fields) > 0 {
			f := fields[0]
			return fmt.Errorf("%s %v fails %s=%s", f.Field(), f.Value(), f.Tag(), f.Param())
		}
		return err
	}
	return nil
}
