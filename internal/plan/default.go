package plan

// defaultDays is indexed by weekday, Sunday first.
var defaultDays = []DayTemplate{
	{Label: "Rest & Mobility", Tasks: []string{"20 min walk", "Full-body stretch", "Foam rolling"}},
	{Label: "Push", Tasks: []string{"Bench press 4x8", "Overhead press 3x10", "Incline dumbbell press 3x10", "Triceps dips 3x12"}},
	{Label: "Pull", Tasks: []string{"Deadlift 4x5", "Pull-ups 4x8", "Barbell row 3x10", "Biceps curls 3x12"}},
	{Label: "Legs", Tasks: []string{"Back squat 4x8", "Romanian deadlift 3x10", "Walking lunges 3x12", "Calf raises 4x15"}},
	{Label: "Conditioning", Tasks: []string{"5 km run", "Plank 3x60s", "Hanging leg raises 3x12"}},
	{Label: "Upper Body", Tasks: []string{"Weighted chin-ups 4x6", "Dumbbell bench 3x10", "Face pulls 3x15", "Lateral raises 3x15"}},
	{Label: "Lower & Core", Tasks: []string{"Front squat 4x6", "Hip thrusts 3x10", "Cable woodchops 3x12", "Ab wheel 3x10"}},
}

// Default returns the built-in seven-day rotation.
func Default() Catalog {
	c, err := New(defaultDays)
	if err != nil {
		panic(err)
	}
	return c
}
