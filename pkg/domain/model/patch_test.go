package model_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/m-mizutani/gt"
	"github.com/secmon-lab/qoit/pkg/domain/model"
)

func TestPatch_UnmarshalJSON(t *testing.T) {
	var body struct {
		Message model.Patch[string]    `json:"message"`
		BackAt  model.Patch[time.Time] `json:"back_at"`
		Note    model.Patch[string]    `json:"note"`
	}

	err := json.Unmarshal([]byte(`{"message":"Writing","back_at":null}`), &body)
	gt.NoError(t, err).Required()

	msg, ok := body.Message.Value()
	gt.Bool(t, ok).True()
	gt.Value(t, msg).Equal("Writing")

	gt.Bool(t, body.BackAt.IsPresent()).True()
	gt.Bool(t, body.BackAt.IsNull()).True()

	gt.Bool(t, body.Note.IsPresent()).False()
}

func TestPatch_UnmarshalJSON_InvalidValue(t *testing.T) {
	var body struct {
		BackAt model.Patch[time.Time] `json:"back_at"`
	}
	err := json.Unmarshal([]byte(`{"back_at":"tomorrow"}`), &body)
	gt.Error(t, err)
}
