package target

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/JeroenBertels/glh-timer/pkg/model"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name      string
		token     string
		wantBib   int
		wantGroup string
		wantErr   bool
	}{
		{name: "numeric_is_bib", token: "12", wantBib: 12},
		{name: "padded_numeric", token: " 45 ", wantBib: 45},
		{name: "text_is_group", token: "Elite", wantGroup: "Elite"},
		{name: "empty", token: "", wantErr: true},
		{name: "zero_bib", token: "0", wantErr: true},
		{name: "negative_bib", token: "-3", wantErr: true},
		{name: "group_starting_with_digit", token: "1K", wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.token)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			if tt.wantBib != 0 {
				bib, ok := got.Bib()
				assert.True(t, ok)
				assert.Equal(t, tt.wantBib, bib)
			} else {
				group, ok := got.Group()
				assert.True(t, ok)
				assert.Equal(t, tt.wantGroup, group)
			}
		})
	}
}

func TestParseList(t *testing.T) {
	targets, err := ParseList("12,B,45")
	assert.NoError(t, err)
	assert.Len(t, targets, 3)
	assert.Equal(t, "12", targets[0].String())
	assert.Equal(t, "B", targets[1].String())
	assert.Equal(t, "45", targets[2].String())

	_, err = ParseList("")
	assert.Error(t, err)
	_, err = ParseList(" , ,")
	assert.Error(t, err)
	_, err = ParseList("12,1K")
	assert.Error(t, err)
}

func TestApply(t *testing.T) {
	group := "Elite"
	ev := model.TimingEvent{Group: &group}
	ByBib(12).Apply(&ev)
	assert.Equal(t, 12, *ev.Bib)
	assert.Nil(t, ev.Group)

	ByGroup("Open").Apply(&ev)
	assert.Nil(t, ev.Bib)
	assert.Equal(t, "Open", *ev.Group)
}
