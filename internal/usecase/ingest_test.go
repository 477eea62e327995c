package usecase

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fairyhunter13/ai-candidate-ranker/internal/domain"
)

func TestParseCandidatesCSV(t *testing.T) {
	csvText := strings.Join([]string{
		`name,title,company,location,years_experience,base_salary,ote,open_to_remote,open_to_travel,enrichment`,
		`Dana Lee,Enterprise AE,Acme,"Austin, TX",8,"$120,000",240000,true,No,"{""occupation"":""AE"",""skills"":[""MEDDIC""]}"`,
		`Alex Kim,,Globex,,5.0,,,"Yes",1,[]`,
	}, "\n")

	rows, err := ParseCandidatesCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	first := rows[0]
	assert.Equal(t, 0, first.SourceIndex)
	assert.Equal(t, "Dana Lee", first.Name)
	assert.Equal(t, "Enterprise AE", first.Title)
	assert.Equal(t, "Acme", first.Company)
	assert.Equal(t, "Austin, TX", first.Location)
	assert.Equal(t, 8, first.YearsExperience)
	require.NotNil(t, first.BaseSalary)
	assert.Equal(t, 120000, *first.BaseSalary)
	require.NotNil(t, first.OTE)
	assert.Equal(t, 240000, *first.OTE)
	assert.True(t, first.OpenToRemote)
	assert.False(t, first.OpenToTravel)
	assert.Contains(t, first.Enrichment, `"skills"`)

	second := rows[1]
	assert.Equal(t, 1, second.SourceIndex)
	assert.Equal(t, "Alex Kim", second.Name)
	assert.Empty(t, second.Title)
	assert.Equal(t, 5, second.YearsExperience)
	assert.Nil(t, second.BaseSalary)
	assert.True(t, second.OpenToRemote)
	assert.True(t, second.OpenToTravel)
	assert.Equal(t, "[]", second.Enrichment)
}

func TestParseCandidatesCSV_HeaderVariants(t *testing.T) {
	csvText := "﻿Name,Years Experience,Open To Remote\nDana,7,yes\n"

	rows, err := ParseCandidatesCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dana", rows[0].Name)
	assert.Equal(t, 7, rows[0].YearsExperience)
	assert.True(t, rows[0].OpenToRemote)
}

func TestParseCandidatesCSV_UnknownColumnsIgnored(t *testing.T) {
	csvText := "name,favorite_color\nDana,teal\n"

	rows, err := ParseCandidatesCSV(strings.NewReader(csvText))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Dana", rows[0].Name)
	assert.Zero(t, rows[0].YearsExperience)
}

func TestParseCandidatesCSV_Errors(t *testing.T) {
	cases := map[string]string{
		"empty input": "",
		"header only": "name,title\n",
		"ragged row":  "name,title\nDana,AE,extra\n",
	}
	for name, in := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseCandidatesCSV(strings.NewReader(in))
			require.Error(t, err)
			assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		})
	}
}
