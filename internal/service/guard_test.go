package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MKhiriev/go-outbox/models"
)

const (
	realMuscleGroupID = "64b7f0c2a1e4d3b2c1a09f8e"
	realExerciseID    = "64b7f0c2a1e4d3b2c1a09f8f"
)

func TestGuard_Classify(t *testing.T) {
	g := NewGuard(nil)

	tests := []struct {
		name string
		op   models.Operation
		want models.Classification
	}{
		{
			name: "unknown custom endpoint is void",
			op:   models.Operation{Type: models.OperationDelete, Resource: "exercise", CustomEndpoint: "/unknown/123"},
			want: models.ClassVoid,
		},
		{
			name: "custom endpoint without allowed prefix is void",
			op:   models.Operation{Type: models.OperationDelete, Resource: "routine", CustomEndpoint: "/routines"},
			want: models.ClassVoid,
		},
		{
			name: "allowed custom endpoint dispatches",
			op:   models.Operation{Type: models.OperationDelete, Resource: "exercise", CustomEndpoint: "/exercises/" + realExerciseID},
			want: models.ClassDispatch,
		},
		{
			name: "custom endpoint with temporary segment skips",
			op:   models.Operation{Type: models.OperationDelete, Resource: "routine-muscle-group", CustomEndpoint: "/routines/temp-r1/muscle-groups/" + realMuscleGroupID},
			want: models.ClassSkip,
		},
		{
			name: "reference to temporary id skips",
			op: models.Operation{Type: models.OperationCreate, Resource: "exercise", Payload: models.Payload{
				"_id": "temp-ex", "name": "Squat", "muscleGroup": "temp-mg",
			}},
			want: models.ClassSkip,
		},
		{
			name: "own temporary id of a create dispatches",
			op: models.Operation{Type: models.OperationCreate, Resource: "muscle-group", Payload: models.Payload{
				"_id": "temp-mg", "name": "Legs",
			}},
			want: models.ClassDispatch,
		},
		{
			name: "update of an entity not created yet skips",
			op: models.Operation{Type: models.OperationUpdate, Resource: "routine", Payload: models.Payload{
				"id": "temp-r1", "name": "Push",
			}},
			want: models.ClassSkip,
		},
		{
			name: "temporary id inside a list skips",
			op: models.Operation{Type: models.OperationCreate, Resource: "routine", Payload: models.Payload{
				"muscleGroups": []any{realMuscleGroupID, "temp-mg"},
			}},
			want: models.ClassSkip,
		},
		{
			name: "bare prefix is not a temporary id",
			op: models.Operation{Type: models.OperationUpdate, Resource: "routine", Payload: models.Payload{
				"id": realExerciseID, "note": "temp-",
			}},
			want: models.ClassDispatch,
		},
		{
			name: "resolved reference dispatches",
			op: models.Operation{Type: models.OperationCreate, Resource: "exercise", Payload: models.Payload{
				"_id": "temp-ex", "muscleGroup": realMuscleGroupID,
			}},
			want: models.ClassDispatch,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, g.Classify(tt.op))
		})
	}
}
