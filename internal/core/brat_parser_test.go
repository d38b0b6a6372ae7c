package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ner-eval/internal/core/types"
)

func TestParseAnnotations(t *testing.T) {
	input := strings.Join([]string{
		"T1\tFinding 0 5\tTumor",
		"T2\tNegation 18 20\tNo",
		"A1\tNegated T1",
		"R1\tModifies Arg1:T2 Arg2:T1",
		"",
		"T3\tFinding 21 25;26 31\tmeta stasis",
		"T4\tFinding x 5\tTumor",
		"T5\tFinding 9 3\tbackwards",
		"#1\tAnnotatorNotes T1\tchecked",
		"T6\tSign-Symptom 9 16\tpresent  ",
	}, "\n")

	records, malformed, err := ParseAnnotations(strings.NewReader(input), true)
	require.NoError(t, err)

	assert.Equal(t, []types.RawAnnotation{
		{Start: 0, Stop: 5, Label: "finding", Text: "Tumor"},
		{Start: 18, Stop: 20, Label: "negation", Text: "No"},
		{Start: 21, Stop: 31, Label: "finding", Text: "meta stasis"},
		{Start: 9, Stop: 16, Label: "sign-symptom", Text: "present"},
	}, records)
	assert.Equal(t, 5, malformed)
}

func TestParseAnnotationsKeepsCase(t *testing.T) {
	records, malformed, err := ParseAnnotations(strings.NewReader("T1\tFinding 0 5\tTumor\r\n"), false)
	require.NoError(t, err)
	assert.Equal(t, 0, malformed)
	require.Len(t, records, 1)
	assert.Equal(t, "Finding", records[0].Label)
	assert.Equal(t, "Tumor", records[0].Text)
}

func TestParseBratSpan(t *testing.T) {
	span, err := ParseBratSpan("Finding 3 7;10 12;15 20")
	require.NoError(t, err)
	assert.Equal(t, "Finding", span.Label)
	require.Len(t, span.Fragments, 3)

	start, stop := span.Bounds()
	assert.Equal(t, 3, start)
	assert.Equal(t, 20, stop)

	_, err = ParseBratSpan("Finding 3")
	assert.Error(t, err)

	_, err = ParseBratSpan("3 7")
	assert.Error(t, err)
}

func TestParseAnnotationsLabelForms(t *testing.T) {
	input := strings.Join([]string{
		"T1\t2nd_Degree_Burn 0 5\tTumor",
		"T2\tÖdem 6 8\tis",
		"T3\t42 9 16\tpresent",
	}, "\n")

	records, malformed, err := ParseAnnotations(strings.NewReader(input), true)
	require.NoError(t, err)

	assert.Equal(t, []types.RawAnnotation{
		{Start: 0, Stop: 5, Label: "2nd_degree_burn", Text: "Tumor"},
		{Start: 6, Stop: 8, Label: "ödem", Text: "is"},
	}, records)
	assert.Equal(t, 1, malformed)
}
