package models

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseClock(t *testing.T) {
	cases := []struct {
		raw     string
		want    string
		wantErr bool
	}{
		{raw: "09:00", want: "09:00"},
		{raw: "9:05", want: "09:05"},
		{raw: " 13:30:00 ", want: "13:30"},
		{raw: "23:59", want: "23:59"},
		{raw: "24:00", wantErr: true},
		{raw: "10:5", wantErr: true},
		{raw: "10:60", wantErr: true},
		{raw: "10:00:30", wantErr: true},
		{raw: "10", wantErr: true},
		{raw: "", wantErr: true},
		{raw: "aa:bb", wantErr: true},
	}
	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			c, err := ParseClock(tc.raw)
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, c.String())
			assert.Equal(t, tc.want+":00", c.WireString())
		})
	}
}

func TestClockFormat12h(t *testing.T) {
	for raw, want := range map[string]string{
		"00:15": "12:15 AM",
		"09:00": "9:00 AM",
		"12:00": "12:00 PM",
		"13:30": "1:30 PM",
		"23:05": "11:05 PM",
	} {
		c, err := ParseClock(raw)
		require.NoError(t, err)
		assert.Equal(t, want, c.Format12h(), raw)
	}
}

func TestSlotKeyNormalisesTimes(t *testing.T) {
	assert.Equal(t, SlotKey("1", "09:00", "10:00"), SlotKey("1", "9:00:00", "10:00:00"))
	assert.NotEqual(t, SlotKey("1", "09:00", "10:00"), SlotKey("2", "09:00", "10:00"))
	assert.Equal(t, "3|08:00|09:30", SlotKey(" 3 ", "08:00:00", "9:30"))
	assert.Equal(t, "3|8h|09:30", SlotKey("3", "8h", "09:30"))
}

func TestFieldIDUnmarshal(t *testing.T) {
	var payload struct {
		Teacher  FieldID `json:"profesor_id"`
		Course   FieldID `json:"curso_id"`
		Category FieldID `json:"categoria_id"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"profesor_id": 7, "curso_id": " 12 ", "categoria_id": null}`), &payload))

	id, ok := payload.Teacher.Int()
	assert.True(t, ok)
	assert.Equal(t, int64(7), id)
	assert.Equal(t, int64(12), *payload.Course.Ptr())
	assert.False(t, payload.Category.IsSet())
	assert.Nil(t, payload.Category.Ptr())
}

func TestFieldIDRejectsNonPositive(t *testing.T) {
	for _, raw := range []FieldID{"0", "-3", "abc", ""} {
		_, ok := raw.Int()
		assert.False(t, ok, string(raw))
	}
	assert.Equal(t, FieldID(""), IDFromInt(0))
	assert.Equal(t, FieldID("42"), IDFromInt(42))
}

func TestReferenceWeekdayIDByName(t *testing.T) {
	ref := ReferenceData{Weekdays: []Weekday{{ID: 1, Name: "Lunes"}, {ID: 3, Name: "Miércoles"}}}

	id, ok := ref.WeekdayIDByName(" MIERCOLES ")
	assert.True(t, ok)
	assert.Equal(t, int64(3), id)

	id, ok = ref.WeekdayIDByName("lunes")
	assert.True(t, ok)
	assert.Equal(t, int64(1), id)

	_, ok = ref.WeekdayIDByName("Domingo")
	assert.False(t, ok)
	_, ok = ref.WeekdayIDByName("")
	assert.False(t, ok)
}

func TestLoadAssignmentResolvesNamedWeekdays(t *testing.T) {
	form := NewAssignmentForm("f-1", FormModeEdit)
	form.Reference = ReferenceData{Weekdays: []Weekday{{ID: 2, Name: "Martes"}}}

	form.LoadAssignment(Assignment{ID: 4, TeacherID: 3, CourseID: 7, ScheduleSlots: []ScheduleSlot{
		{WeekdayName: "martes", StartTime: "08:00:00", EndTime: "09:00:00"},
		{WeekdayName: "Sabado", StartTime: "10:00:00", EndTime: "11:00:00"},
		{WeekdayID: 5, StartTime: "12:00:00", EndTime: "13:00:00"},
	}})

	require.Len(t, form.Rows, 3)
	assert.Equal(t, FieldID("2"), form.Rows[0].WeekdayID)
	assert.Equal(t, "08:00", form.Rows[0].StartTime)
	assert.False(t, form.Rows[1].WeekdayID.IsSet())
	assert.Equal(t, FieldID("5"), form.Rows[2].WeekdayID)
}
