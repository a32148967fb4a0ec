package engine

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oxhq/stylefx/internal/model"
)

func TestExitStatusBits(t *testing.T) {
	tests := []struct {
		name   string
		report *Report
		want   ExitStatus
	}{
		{"empty", &Report{}, ExitOK},
		{"clean", &Report{Files: []FileResult{{Path: "a"}}}, ExitOK},
		{"changed", &Report{Files: []FileResult{{Path: "a", Changed: true}}}, ExitChanged},
		{
			"unparsable",
			&Report{Files: []FileResult{{Path: "a", Err: model.Errorf(model.ErrUnparsableSource, "a", "x")}}},
			ExitUnparsable,
		},
		{
			"union",
			&Report{Files: []FileResult{
				{Path: "a", Changed: true},
				{Path: "b", Err: model.Errorf(model.ErrDiverged, "b", "x")},
				{Path: "c", Err: model.Errorf(model.ErrUnparsableSource, "c", "x")},
			}},
			ExitChanged | ExitOther | ExitUnparsable,
		},
		{"config", ConfigReport(false, model.Errorf(model.ErrUnknownRule, "", "nope")), ExitConfig},
		{"cache warning", &Report{CacheErr: errors.New("disk")}, ExitOK},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.report.ExitStatus())
		})
	}
}

func TestExitStatusValues(t *testing.T) {
	assert.Equal(t, 4, int(ExitUnparsable))
	assert.Equal(t, 8, int(ExitChanged))
	assert.Equal(t, 16, int(ExitConfig))
	assert.Equal(t, 64, int(ExitOther))
	assert.True(t, (ExitChanged | ExitOther).Has(ExitOther))
	assert.False(t, ExitChanged.Has(ExitOther))
}

func TestFileResultStatus(t *testing.T) {
	assert.Equal(t, "ok", FileResult{}.Status())
	assert.Equal(t, "changed", FileResult{Changed: true}.Status())
	assert.Equal(t, "error", FileResult{Err: errors.New("x")}.Status())
	assert.Equal(t, "unparsable", FileResult{Err: model.Errorf(model.ErrUnparsableSource, "a", "x")}.Status())
	assert.True(t, FileResult{Err: errors.New("x")}.Failed())
}

func TestSummaryCountsCached(t *testing.T) {
	r := &Report{Files: []FileResult{
		{Path: "a", Cached: true},
		{Path: "b", Cached: true, Changed: true},
		{Path: "c", Err: errors.New("io")},
	}}
	assert.Equal(t, Summary{Total: 3, Changed: 1, Cached: 2, Failed: 1}, r.Summary())
}
