//go:build !integration

package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/sells-group/citymap/internal/export"
	"github.com/sells-group/citymap/internal/model"
)

func TestRunClassify_YAML(t *testing.T) {
	c := testConfig(t)
	// Only the city table is read.
	c.Data.Features, c.Data.Topology = "", ""

	var buf bytes.Buffer
	require.NoError(t, runClassify(context.Background(), c, &buf, model.AttrPopulation, "yaml"))

	var b export.Breaks
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &b))
	assert.Equal(t, model.AttrPopulation, b.Attribute)
	assert.Equal(t, 15, b.Cities)
	require.Len(t, b.Classes, 5)
	assert.InDelta(t, 2500, b.Classes[0].Min, 0.001)
	assert.InDelta(t, 37500, b.Classes[4].Max, 0.001)
}

func TestRunClassify_JSON(t *testing.T) {
	c := testConfig(t)

	var buf bytes.Buffer
	require.NoError(t, runClassify(context.Background(), c, &buf, model.AttrLat, "json"))

	var b export.Breaks
	require.NoError(t, json.Unmarshal(buf.Bytes(), &b))
	assert.Equal(t, model.AttrLat, b.Attribute)
	assert.Len(t, b.Thresholds, 4)
}

func TestRunClassify_BadFormat(t *testing.T) {
	c := testConfig(t)
	err := runClassify(context.Background(), c, &bytes.Buffer{}, model.AttrLat, "csv")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestRunClassify_TabTable(t *testing.T) {
	c := testConfig(t)
	data, err := os.ReadFile(c.Data.Cities)
	require.NoError(t, err)
	table := "# exported cities\n" + strings.ReplaceAll(string(data), ",", "\t")
	require.NoError(t, os.WriteFile(c.Data.Cities, []byte(table), 0o644))
	c.Data.Delimiter, c.Data.Comment = "tab", "#"

	var buf bytes.Buffer
	require.NoError(t, runClassify(context.Background(), c, &buf, model.AttrPopulation, "json"))

	var b export.Breaks
	require.NoError(t, json.Unmarshal(buf.Bytes(), &b))
	assert.Equal(t, 15, b.Cities)
	assert.InDelta(t, 37500, b.Classes[4].Max, 0.001)
}
