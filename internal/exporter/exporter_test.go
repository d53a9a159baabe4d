package exporter_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/KaramelBytes/churnlens-cli/internal/dataset"
	"github.com/KaramelBytes/churnlens-cli/internal/exporter"
	"github.com/KaramelBytes/churnlens-cli/internal/parser"
)

func sample() *dataset.Dataset {
	cols := []dataset.Column{{Key: "name", Label: "Name"}, {Key: "age", Label: "Age"}, {Key: "note", Label: "Note"}}
	return dataset.New(cols, []dataset.Row{
		{Fields: map[string]any{"name": "Smith, Ann", "age": 34.0, "note": `said "hi"`}, ChurnProbability: 81.25, Risk: dataset.HighRisk},
		{Fields: map[string]any{"name": "Bob", "age": nil, "note": "line1\nline2"}, ChurnProbability: 10, Risk: dataset.LowRisk},
	})
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exporter.WriteCSV(&buf, sample()))
	want := "name,age,note,Churn_Probability,Churn_Prediction\n" +
		`"Smith, Ann",34,"said ""hi""",81.25,High Risk` + "\n" +
		"Bob,,\"line1\nline2\",10,Low Risk"
	assert.Equal(t, want, buf.String())
}

func TestWriteCSVEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, exporter.WriteCSV(&buf, nil))
	assert.Equal(t, "Churn_Probability,Churn_Prediction", buf.String())
}

func TestCSVRoundTrip(t *testing.T) {
	src := sample()
	var buf bytes.Buffer
	require.NoError(t, exporter.WriteCSV(&buf, src))

	res, err := parser.Load(exporter.DefaultFileName, &buf, parser.Options{})
	require.NoError(t, err)
	ds := res.Dataset
	require.Equal(t, src.Len(), ds.Len())
	assert.Equal(t, "Smith, Ann", ds.Rows[0].Fields["name"])
	assert.Equal(t, `said "hi"`, ds.Rows[0].Fields["note"])
	assert.Equal(t, "line1\nline2", ds.Rows[1].Fields["note"])
	assert.Nil(t, ds.Rows[1].Fields["age"])
	assert.Equal(t, src.Summary, ds.Summary)
}

func TestXLSXRoundTrip(t *testing.T) {
	src := sample()
	var buf bytes.Buffer
	require.NoError(t, exporter.WriteXLSX(&buf, src, ""))

	res, err := parser.Load("out.xlsx", &buf, parser.Options{Sheet: exporter.DefaultSheet})
	require.NoError(t, err)
	ds := res.Dataset
	require.Equal(t, 2, ds.Len())
	assert.Equal(t, []string{"name", "age", "note"}, []string{ds.Columns[0].Key, ds.Columns[1].Key, ds.Columns[2].Key})
	assert.Equal(t, 34.0, ds.Rows[0].Fields["age"])
	assert.Equal(t, dataset.HighRisk, ds.Rows[0].Risk)
	assert.InDelta(t, 81.25, ds.Rows[0].ChurnProbability, 1e-9)
	assert.Equal(t, src.Summary, ds.Summary)
}

func TestCSVRoundTripKeepsIdentifiers(t *testing.T) {
	in := "id,zip,Churn_Probability,Churn_Prediction\n00123,02134,55,High Risk\n"
	res, err := parser.Load("ids.csv", bytes.NewBufferString(in), parser.Options{})
	require.NoError(t, err)
	assert.Equal(t, "00123", res.Dataset.Rows[0].Fields["id"])

	var buf bytes.Buffer
	require.NoError(t, exporter.WriteCSV(&buf, res.Dataset))
	assert.Equal(t, "id,zip,Churn_Probability,Churn_Prediction\n00123,02134,55,High Risk", buf.String())
}
