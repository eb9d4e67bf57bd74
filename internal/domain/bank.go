package domain

// Slot is one position of the game blueprint.
type Slot struct {
	Type       QuestionType `json:"type" yaml:"type"`
	Difficulty Difficulty   `json:"difficulty" yaml:"difficulty"`
}

// Blueprint fixes the structure of every generated session.
type Blueprint []Slot

// Session composition.
const (
	QuestionsPerSession      = 5
	MultipleChoicePerSession = 3
	TrueFalsePerSession      = 2
)

// DefaultBlueprint yields a maximum of 100 points with the default score table.
func DefaultBlueprint() Blueprint {
	return Blueprint{
		{Type: TypeMultipleChoice, Difficulty: DifficultyEasy},
		{Type: TypeMultipleChoice, Difficulty: DifficultyMedium},
		{Type: TypeMultipleChoice, Difficulty: DifficultyHard},
		{Type: TypeTrueFalse, Difficulty: DifficultyMedium},
		{Type: TypeTrueFalse, Difficulty: DifficultyMedium},
	}
}

// Validate enforces the 3 multiple-choice + 2 true-false structure.
func (b Blueprint) Validate() error {
	if len(b) != QuestionsPerSession {
		return Configurationf("blueprint needs %d slots, got %d", QuestionsPerSession, len(b))
	}
	mc, tf := 0, 0
	for _, s := range b {
		switch s.Type {
		case TypeMultipleChoice:
			mc++
		case TypeTrueFalse:
			tf++
		default:
			return Configurationf("blueprint slot has unknown type %q", s.Type)
		}
	}
	if mc != MultipleChoicePerSession || tf != TrueFalsePerSession {
		return Configurationf("blueprint needs %d multiple-choice and %d true-false slots, got %d and %d",
			MultipleChoicePerSession, TrueFalsePerSession, mc, tf)
	}
	return nil
}

// Validate checks every question template in the bank.
func (b QuestionBank) Validate() error {
	seen := make(map[string]struct{}, len(b.Questions))
	for _, q := range b.Questions {
		if q.ID == "" {
			return Configurationf("question without id in bank %q", b.ID)
		}
		if _, dup := seen[q.ID]; dup {
			return Configurationf("duplicate question id %q", q.ID)
		}
		seen[q.ID] = struct{}{}
		if q.TimeLimitSeconds <= 0 {
			return Configurationf("question %q has no time limit", q.ID)
		}
		switch q.Type {
		case TypeMultipleChoice:
			if len(q.Options) < 2 {
				return Configurationf("question %q needs at least two options", q.ID)
			}
		case TypeTrueFalse:
		default:
			return Configurationf("question %q has unknown type %q", q.ID, q.Type)
		}
		if q.CorrectAnswer == "" || !q.ValidAnswer(q.CorrectAnswer) {
			return Configurationf("question %q has invalid correct answer %q", q.ID, q.CorrectAnswer)
		}
	}
	return nil
}

// Lookup returns the question with the given id.
func (b QuestionBank) Lookup(id string) (Question, bool) {
	for _, q := range b.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// DefaultBank is the built-in question pool.
func DefaultBank() QuestionBank {
	return QuestionBank{
		ID: "default",
		Questions: []Question{
			{
				ID: "mc-easy-printer", Type: TypeMultipleChoice, ApplicationName: "3D Printer Axis", Difficulty: DifficultyEasy,
				Prompt:           "Which motor is the usual choice for a low-cost 3D printer axis?",
				Options:          []string{"Hybrid stepper motor", "Frameless BLDC motor", "AC servo motor", "Linear induction motor"},
				CorrectAnswer:    "A",
				TimeLimitSeconds: 20,
				Explanation: Explanation{
					Correct:           "Steppers position in open loop with a simple driver, which keeps printer cost low.",
					Improvements:      []string{"Add a stall-detection driver to catch skipped steps."},
					RealWorldExamples: []string{"Desktop FDM printers", "Laser engravers"},
				},
			},
			{
				ID: "mc-easy-encoder", Type: TypeMultipleChoice, ApplicationName: "Camera Gimbal", Difficulty: DifficultyEasy,
				Prompt:           "Which component reports shaft position back to the drive?",
				Options:          []string{"Bearing", "Encoder", "Gearbox", "Brake"},
				CorrectAnswer:    "B",
				TimeLimitSeconds: 20,
				Explanation: Explanation{
					Correct:           "The encoder closes the position loop by measuring shaft angle.",
					Improvements:      []string{"Pick resolution from the required angular accuracy, not the motor size."},
					RealWorldExamples: []string{"Broadcast camera heads", "Drone gimbals"},
				},
			},
			{
				ID: "mc-easy-bearing", Type: TypeMultipleChoice, ApplicationName: "CNC Rotary Table", Difficulty: DifficultyEasy,
				Prompt:           "Which bearing carries radial, axial and tilting loads in a single unit?",
				Options:          []string{"Deep groove ball bearing", "Needle bearing", "Cross roller bearing"},
				CorrectAnswer:    "C",
				TimeLimitSeconds: 20,
				Explanation: Explanation{
					Correct:           "Alternating rollers in a cross roller bearing take load in every direction.",
					Improvements:      []string{"Check the tilting moment rating against the table's overhang load."},
					RealWorldExamples: []string{"Rotary indexing tables", "Radar pedestals"},
				},
			},
			{
				ID: "mc-medium-agv", Type: TypeMultipleChoice, ApplicationName: "AGV Wheel Drive", Difficulty: DifficultyMedium,
				Prompt:           "An AGV wheel needs high torque in a short package. Which gearbox fits best?",
				Options:          []string{"Worm gear", "Planetary gearbox", "Belt reduction", "Rack and pinion"},
				CorrectAnswer:    "B",
				TimeLimitSeconds: 25,
				Explanation: Explanation{
					Correct:           "Planetary stages share load across several planets for high torque density.",
					Improvements:      []string{"Size for peak acceleration torque, not just cruise torque."},
					RealWorldExamples: []string{"Warehouse AGVs", "Hospital delivery robots"},
				},
			},
			{
				ID: "mc-medium-robot", Type: TypeMultipleChoice, ApplicationName: "Robot Arm Joint", Difficulty: DifficultyMedium,
				Prompt:           "Why do collaborative robot joints favour strain wave gears?",
				Options:          []string{"Lowest cost per stage", "Near-zero backlash at high ratio", "Best efficiency at high speed", "No lubrication needed"},
				CorrectAnswer:    "B",
				TimeLimitSeconds: 25,
				Explanation: Explanation{
					Correct:           "Strain wave gears reach ratios above 100:1 in one stage with almost no backlash.",
					Improvements:      []string{"Account for flexspline compliance in the joint stiffness model."},
					RealWorldExamples: []string{"Cobot wrists", "Surgical robots"},
				},
			},
			{
				ID: "mc-medium-conveyor", Type: TypeMultipleChoice, ApplicationName: "Conveyor Indexer", Difficulty: DifficultyMedium,
				Prompt:           "Which drive is needed to close a position loop on an AC servo motor?",
				Options:          []string{"Stepper driver", "VFD in V/f mode", "Servo drive", "Soft starter"},
				CorrectAnswer:    "C",
				TimeLimitSeconds: 25,
				Explanation: Explanation{
					Correct:           "A servo drive runs current, velocity and position loops from encoder feedback.",
					Improvements:      []string{"Tune the velocity loop before the position loop."},
					RealWorldExamples: []string{"Packaging indexers", "Labelling machines"},
				},
			},
			{
				ID: "mc-hard-cnc", Type: TypeMultipleChoice, ApplicationName: "CNC Rotary Table", Difficulty: DifficultyHard,
				Prompt:           "A rotary table sees heavy cutting shocks. Which reducer keeps stiffness under shock load?",
				Options:          []string{"Strain wave gear", "Cycloidal reducer", "Single-stage spur gear", "Harmonic belt drive"},
				CorrectAnswer:    "B",
				TimeLimitSeconds: 30,
				Explanation: Explanation{
					Correct:           "Cycloidal reducers spread load over many lobes and tolerate up to 500% shock.",
					Improvements:      []string{"Verify lost motion, not only backlash, for contouring accuracy."},
					RealWorldExamples: []string{"5-axis trunnion tables", "Welding positioners"},
				},
			},
			{
				ID: "mc-hard-robot-encoder", Type: TypeMultipleChoice, ApplicationName: "Robot Arm Joint", Difficulty: DifficultyHard,
				Prompt:           "A robot must resume without homing after a power loss. Which feedback is required?",
				Options:          []string{"Incremental encoder with index", "Hall sensors", "Multi-turn absolute encoder", "Tachogenerator"},
				CorrectAnswer:    "C",
				TimeLimitSeconds: 30,
				Explanation: Explanation{
					Correct:           "A multi-turn absolute encoder keeps position and revolution count across power cycles.",
					Improvements:      []string{"Check whether the multi-turn counter is battery-backed or mechanical."},
					RealWorldExamples: []string{"Industrial six-axis robots", "Palletizers"},
				},
			},
			{
				ID: "mc-hard-gimbal", Type: TypeMultipleChoice, ApplicationName: "Camera Gimbal", Difficulty: DifficultyHard,
				Prompt:           "A direct-drive gimbal axis has no gearbox. What dominates its pointing accuracy?",
				Options:          []string{"Encoder resolution and mounting", "Gear backlash", "Belt tension", "Motor voltage constant"},
				CorrectAnswer:    "A",
				TimeLimitSeconds: 30,
				Explanation: Explanation{
					Correct:           "Without a reducer the encoder sees the load directly, so its resolution and eccentricity set accuracy.",
					Improvements:      []string{"Use a ring encoder with two read heads to cancel eccentricity."},
					RealWorldExamples: []string{"Cinema gimbals", "Satellite trackers"},
				},
			},
			{
				ID: "tf-easy-stepper", Type: TypeTrueFalse, ApplicationName: "3D Printer Axis", Difficulty: DifficultyEasy,
				Prompt:           "A stepper motor needs an encoder to move to a commanded position.",
				CorrectAnswer:    AnswerFalse,
				TimeLimitSeconds: 12,
				Explanation: Explanation{
					Correct:           "Steppers position open loop by counting steps; encoders only detect lost steps.",
					RealWorldExamples: []string{"Printer axes", "Pick-and-place feeders"},
				},
			},
			{
				ID: "tf-easy-bearing", Type: TypeTrueFalse, ApplicationName: "Conveyor Indexer", Difficulty: DifficultyEasy,
				Prompt:           "Angular contact bearings are usually mounted in pairs.",
				CorrectAnswer:    AnswerTrue,
				TimeLimitSeconds: 12,
				Explanation: Explanation{
					Correct:           "A single angular contact bearing takes axial load in one direction only.",
					RealWorldExamples: []string{"Spindles", "Ball screw supports"},
				},
			},
			{
				ID: "tf-medium-harmonic", Type: TypeTrueFalse, ApplicationName: "Robot Arm Joint", Difficulty: DifficultyMedium,
				Prompt:           "A strain wave gear can reach a 100:1 ratio in a single stage.",
				CorrectAnswer:    AnswerTrue,
				TimeLimitSeconds: 15,
				Explanation: Explanation{
					Correct:           "The tooth difference between flexspline and circular spline gives very high single-stage ratios.",
					Improvements:      []string{"Higher ratios lower back-drivability; check collision detection needs."},
					RealWorldExamples: []string{"Cobot joints", "Exoskeletons"},
				},
			},
			{
				ID: "tf-medium-agv", Type: TypeTrueFalse, ApplicationName: "AGV Wheel Drive", Difficulty: DifficultyMedium,
				Prompt:           "An incremental encoder keeps its absolute position after a power cycle.",
				CorrectAnswer:    AnswerFalse,
				TimeLimitSeconds: 15,
				Explanation: Explanation{
					Correct:           "Incremental encoders only count changes; the axis must be homed after power-up.",
					Improvements:      []string{"Use an absolute encoder where homing is unsafe or slow."},
					RealWorldExamples: []string{"AGV odometry", "Conveyor tracking"},
				},
			},
			{
				ID: "tf-medium-cnc", Type: TypeTrueFalse, ApplicationName: "CNC Rotary Table", Difficulty: DifficultyMedium,
				Prompt:           "Cycloidal reducers are known for poor shock-load tolerance.",
				CorrectAnswer:    AnswerFalse,
				TimeLimitSeconds: 15,
				Explanation: Explanation{
					Correct:           "Load is shared across many lobes, which makes cycloidal reducers very shock tolerant.",
					RealWorldExamples: []string{"Robot bases", "Positioners"},
				},
			},
			{
				ID: "tf-medium-gimbal", Type: TypeTrueFalse, ApplicationName: "Camera Gimbal", Difficulty: DifficultyMedium,
				Prompt:           "A frameless BLDC motor ships without its own shaft and bearings.",
				CorrectAnswer:    AnswerTrue,
				TimeLimitSeconds: 15,
				Explanation: Explanation{
					Correct:           "Frameless kits are a rotor and stator only; the machine provides shaft and bearings.",
					RealWorldExamples: []string{"Gimbal axes", "Robot joints"},
				},
			},
			{
				ID: "tf-hard-conveyor", Type: TypeTrueFalse, ApplicationName: "Conveyor Indexer", Difficulty: DifficultyHard,
				Prompt:           "Doubling the gearbox ratio halves the load inertia reflected to the motor.",
				CorrectAnswer:    AnswerFalse,
				TimeLimitSeconds: 15,
				Explanation: Explanation{
					Correct:           "Reflected inertia scales with the square of the ratio, so doubling the ratio quarters it.",
					Improvements:      []string{"Aim for a load-to-motor inertia ratio below 10:1 for crisp tuning."},
					RealWorldExamples: []string{"Indexing conveyors", "Rotary knife cutters"},
				},
			},
		},
	}
}
