package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var statsValues = []CountryValue{
	{CountryName: "Afghanistan", Region: "South Asia", IncomeGroup: "Low income", Rate: 0.04},
	{CountryName: "Botswana", Region: "Sub-Saharan Africa", IncomeGroup: "Upper middle income", Rate: 5.67},
	{CountryName: "Eswatini", Region: "Sub-Saharan Africa", IncomeGroup: "Lower middle income", Rate: 7.33},
	{CountryName: "Nowhere", Region: "Unknown", IncomeGroup: "Unknown", Rate: 0.04},
}

func TestSummarize(t *testing.T) {
	s, err := Summarize(statsValues)
	require.NoError(t, err)

	assert.Equal(t, 4, s.Count)
	assert.Equal(t, "Eswatini", s.Highest.CountryName)
	assert.Equal(t, "Afghanistan", s.Lowest.CountryName, "ties keep the first country")
	assert.InDelta(t, 3.27, s.Mean, 1e-9)
}

func TestSummarize_Empty(t *testing.T) {
	_, err := Summarize(nil)
	assert.ErrorIs(t, err, ErrNoData)
}

func TestGroupMeans(t *testing.T) {
	tests := []struct {
		name string
		by   GroupBy
		want []GroupMean
	}{
		{
			name: "by region",
			by:   GroupRegion,
			want: []GroupMean{
				{Key: "South Asia", Mean: 0.04, Count: 1},
				{Key: "Sub-Saharan Africa", Mean: 6.5, Count: 2},
				{Key: "Unknown", Mean: 0.04, Count: 1},
			},
		},
		{
			name: "by income group",
			by:   GroupIncomeGroup,
			want: []GroupMean{
				{Key: "Low income", Mean: 0.04, Count: 1},
				{Key: "Lower middle income", Mean: 7.33, Count: 1},
				{Key: "Unknown", Mean: 0.04, Count: 1},
				{Key: "Upper middle income", Mean: 5.67, Count: 1},
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GroupMeans(statsValues, tt.by)
			require.Len(t, got, len(tt.want))
			for i := range tt.want {
				assert.Equal(t, tt.want[i].Key, got[i].Key)
				assert.Equal(t, tt.want[i].Count, got[i].Count)
				assert.InDelta(t, tt.want[i].Mean, got[i].Mean, 1e-9)
			}
		})
	}
}

func TestYearGroupMeans(t *testing.T) {
	obs := []Observation{
		{Year: 2001, Key: "South Asia", Value: Num(2)},
		{Year: 2000, Key: "South Asia", Value: Num(1)},
		{Year: 2000, Key: "South Asia", Value: Num(3)},
		{Year: 2000, Key: "Europe", Value: Missing},
		{Year: 2000, Key: "Africa", Value: Num(4)},
	}

	got := YearGroupMeans(obs)
	assert.Equal(t, []YearGroupMean{
		{Year: 2000, Key: "Africa", Mean: 4, Count: 1},
		{Year: 2000, Key: "South Asia", Mean: 2, Count: 2},
		{Year: 2001, Key: "South Asia", Mean: 2, Count: 1},
	}, got)
}

func TestParseGroupBy(t *testing.T) {
	tests := []struct {
		in      string
		want    GroupBy
		wantErr bool
	}{
		{in: "region", want: GroupRegion},
		{in: "income", want: GroupIncomeGroup},
		{in: "income_group", want: GroupIncomeGroup},
		{in: "country", want: GroupCountry},
		{in: "continent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseGroupBy(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
