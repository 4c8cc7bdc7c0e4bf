package reconstruct

import (
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/horizon-array/airshower/internal/geom"
)

func TestHeaderAndToStringHaveMatchingColumnCount(t *testing.T) {
	t.Parallel()
	result := Result{RunID: uuid.New(), Triggered: true, MonoRecon: invalidShower()}
	ground := geom.MakePlane(geom.Vector3{Y: 1}, geom.Vector3{})

	header := strings.Split(Header(), ",")
	row := strings.Split(result.ToString(ground), ",")
	require.Equal(t, len(header), len(row))
}

func TestToStringUntriggeredOmitsGeometry(t *testing.T) {
	t.Parallel()
	result := Result{RunID: uuid.New(), Triggered: false}
	ground := geom.MakePlane(geom.Vector3{Y: 1}, geom.Vector3{})

	row := result.ToString(ground)
	assert.Contains(t, row, ",false,")
}

func TestToStringIncludesRunID(t *testing.T) {
	t.Parallel()
	id := uuid.New()
	result := Result{RunID: id, Triggered: true, MonoRecon: invalidShower()}
	ground := geom.MakePlane(geom.Vector3{Y: 1}, geom.Vector3{})

	assert.True(t, strings.HasPrefix(result.ToString(ground), id.String()))
}
