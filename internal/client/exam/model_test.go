package exam

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func validTest() *Test {
	return &Test{
		ID:    1,
		Title: "Geometry",
		Questions: []Question{
			{ID: 2, Text: "Q2", Options: []Option{{Text: "a"}, {Text: "b"}}, CorrectOption: 1},
			{ID: 1, Text: "Q1", Options: []Option{{Text: "a"}, {Text: "b"}, {Text: "c"}}, CorrectOption: 2},
		},
	}
}

func TestValidate_OK(t *testing.T) {
	require.NoError(t, validTest().Validate())
}

func TestValidate_NoQuestions(t *testing.T) {
	tt := &Test{ID: 1, Title: "empty"}
	require.ErrorIs(t, tt.Validate(), ErrInvalidTest)
}

func TestValidate_TooFewOptions(t *testing.T) {
	tt := validTest()
	tt.Questions[0].Options = tt.Questions[0].Options[:1]
	tt.Questions[0].CorrectOption = 0
	require.ErrorIs(t, tt.Validate(), ErrInvalidTest)
}

func TestValidate_CorrectOptionOutOfRange(t *testing.T) {
	tt := validTest()
	tt.Questions[0].CorrectOption = 5
	require.ErrorIs(t, tt.Validate(), ErrInvalidTest)

	tt = validTest()
	tt.Questions[1].CorrectOption = -1
	require.ErrorIs(t, tt.Validate(), ErrInvalidTest)
}

func TestSortQuestions(t *testing.T) {
	tt := validTest()
	tt.SortQuestions()
	require.Equal(t, 1, tt.Questions[0].ID)
	require.Equal(t, 2, tt.Questions[1].ID)
}
