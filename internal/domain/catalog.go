package domain

import "sort"

// Catalog holds the static components and the applications they unlock.
type Catalog struct {
	Components []Component         `json:"components" yaml:"components"`
	Rules      []CompatibilityRule `json:"rules" yaml:"rules"`
}

// Component returns the component with the given id.
func (c Catalog) Component(id string) (Component, bool) {
	for _, comp := range c.Components {
		if comp.ID == id {
			return comp, true
		}
	}
	return Component{}, false
}

// Compatible reports whether selection contains every component the
// application requires.
func (c Catalog) Compatible(application string, selection []string) (bool, error) {
	set, err := c.selectionSet(selection)
	if err != nil {
		return false, err
	}
	for _, rule := range c.Rules {
		if rule.Application == application {
			return rule.satisfiedBy(set), nil
		}
	}
	return false, Validationf("unknown application %q", application)
}

// UnlockedApplications lists, in name order, the applications selection unlocks.
func (c Catalog) UnlockedApplications(selection []string) ([]string, error) {
	set, err := c.selectionSet(selection)
	if err != nil {
		return nil, err
	}
	unlocked := []string{}
	for _, rule := range c.Rules {
		if rule.satisfiedBy(set) {
			unlocked = append(unlocked, rule.Application)
		}
	}
	sort.Strings(unlocked)
	return unlocked, nil
}

func (c Catalog) selectionSet(selection []string) (map[string]struct{}, error) {
	set := make(map[string]struct{}, len(selection))
	for _, id := range selection {
		if _, ok := c.Component(id); !ok {
			return nil, Validationf("unknown component %q", id)
		}
		set[id] = struct{}{}
	}
	return set, nil
}

func (r CompatibilityRule) satisfiedBy(set map[string]struct{}) bool {
	if len(r.Requires) == 0 {
		return false
	}
	for _, id := range r.Requires {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}

// DefaultCatalog is the booth's component catalog.
func DefaultCatalog() Catalog {
	return Catalog{
		Components: []Component{
			{ID: "servo-motor", Name: "AC Servo Motor", Category: CategoryMotor, Icon: "motor-servo", Description: "Closed-loop motor with high dynamic response."},
			{ID: "stepper-motor", Name: "Hybrid Stepper Motor", Category: CategoryMotor, Icon: "motor-stepper", Description: "Open-loop positioning in discrete steps."},
			{ID: "bldc-motor", Name: "Frameless BLDC Motor", Category: CategoryMotor, Icon: "motor-bldc", Description: "Compact brushless torque motor for integration into joints."},
			{ID: "planetary-gearbox", Name: "Planetary Gearbox", Category: CategoryGearbox, Icon: "gear-planetary", Description: "High torque density, moderate backlash."},
			{ID: "harmonic-gearbox", Name: "Strain Wave Gear", Category: CategoryGearbox, Icon: "gear-harmonic", Description: "Near-zero backlash with high ratios in one stage."},
			{ID: "cycloidal-gearbox", Name: "Cycloidal Reducer", Category: CategoryGearbox, Icon: "gear-cycloidal", Description: "Shock-load tolerant, very stiff."},
			{ID: "absolute-encoder", Name: "Multi-turn Absolute Encoder", Category: CategoryEncoder, Icon: "encoder-abs", Description: "Knows its position at power-up."},
			{ID: "incremental-encoder", Name: "Incremental Encoder", Category: CategoryEncoder, Icon: "encoder-inc", Description: "Counts pulses relative to a home position."},
			{ID: "servo-drive", Name: "Servo Drive", Category: CategoryDrive, Icon: "drive-servo", Description: "Current, velocity and position loops for servo motors."},
			{ID: "stepper-driver", Name: "Stepper Driver", Category: CategoryDrive, Icon: "drive-stepper", Description: "Microstepping current chopper."},
			{ID: "cross-roller-bearing", Name: "Cross Roller Bearing", Category: CategoryBearing, Icon: "bearing-cross", Description: "Carries radial, axial and tilting loads in one bearing."},
			{ID: "angular-contact-bearing", Name: "Angular Contact Bearing", Category: CategoryBearing, Icon: "bearing-angular", Description: "Combined loads at high speed, usually used in pairs."},
		},
		Rules: []CompatibilityRule{
			{Application: "Robot Arm Joint", Requires: []string{"bldc-motor", "harmonic-gearbox", "absolute-encoder", "servo-drive", "cross-roller-bearing"}},
			{Application: "AGV Wheel Drive", Requires: []string{"bldc-motor", "planetary-gearbox", "incremental-encoder", "servo-drive"}},
			{Application: "CNC Rotary Table", Requires: []string{"servo-motor", "cycloidal-gearbox", "absolute-encoder", "servo-drive", "cross-roller-bearing"}},
			{Application: "3D Printer Axis", Requires: []string{"stepper-motor", "stepper-driver"}},
			{Application: "Conveyor Indexer", Requires: []string{"servo-motor", "planetary-gearbox", "incremental-encoder", "servo-drive", "angular-contact-bearing"}},
			{Application: "Camera Gimbal", Requires: []string{"bldc-motor", "absolute-encoder", "servo-drive"}},
		},
	}
}
