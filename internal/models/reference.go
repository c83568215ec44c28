// ABOUTME: Reference taxonomy models shared by every user.
// ABOUTME: Muscle groups, muscles, equipment, exercises and their muscle intensities.
package models

// EquipmentBodyweight is the equipment name whose sets are not modelled by weight x reps.
const EquipmentBodyweight = "Bodyweight"

// MuscleGroup is a coarse grouping such as Chest or Legs.
type MuscleGroup struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Muscle belongs to exactly one MuscleGroup.
type Muscle struct {
	ID            int64  `db:"id" json:"id"`
	Name          string `db:"name" json:"name"`
	MuscleGroupID int64  `db:"muscle_group_id" json:"muscle_group_id"`
}

// Equipment is a piece of gear an exercise is performed with.
type Equipment struct {
	ID   int64  `db:"id" json:"id"`
	Name string `db:"name" json:"name"`
}

// Exercise is a named movement performed with one piece of equipment.
type Exercise struct {
	ID            int64  `db:"id" json:"id"`
	Title         string `db:"title" json:"title"`
	EquipmentID   int64  `db:"equipment_id" json:"equipment_id"`
	MuscleGroupID int64  `db:"muscle_group_id" json:"muscle_group_id"`
	Equipment     string `db:"equipment" json:"equipment,omitempty"`
	MuscleGroup   string `db:"muscle_group" json:"muscle_group,omitempty"`
}

// ExerciseMuscle links an exercise to a muscle with a relative activation weight.
// Intensity is non-negative but not bounded to [0,1].
type ExerciseMuscle struct {
	ID         int64   `db:"id" json:"id"`
	ExerciseID int64   `db:"exercise_id" json:"exercise_id"`
	MuscleID   int64   `db:"muscle_id" json:"muscle_id"`
	Intensity  float64 `db:"intensity" json:"intensity"`
}
