package render

import (
	"bytes"
	"context"
	"encoding/xml"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/meikuraledutech/orgchart"
	"github.com/meikuraledutech/orgchart/memory"
)

func seed(t *testing.T) (*memory.Store, string) {
	t.Helper()
	ctx := context.Background()
	s := memory.New()
	sid, err := s.CreateStructure(ctx, &orgchart.Structure{Name: "Pemdes", IsActive: true})
	require.NoError(t, err)

	head := &orgchart.Member{StructureID: sid, Name: "budi <kades>", Position: "Kepala Desa", IsActive: true}
	_, err = s.AddMember(ctx, head)
	require.NoError(t, err)
	sec := &orgchart.Member{StructureID: sid, ParentID: &head.ID, Name: "Siti", Position: "Sekretaris", Level: 1, IsActive: true}
	_, err = s.AddMember(ctx, sec)
	require.NoError(t, err)

	_, err = s.CreateConnection(ctx, &orgchart.Connection{StructureID: sid, FromID: head.ID, ToID: sec.ID, Type: orgchart.Dashed, Color: "#ff0000"})
	require.NoError(t, err)
	return s, sid
}

// wellFormed decodes the whole document as XML.
func wellFormed(t *testing.T, data []byte) {
	t.Helper()
	dec := xml.NewDecoder(bytes.NewReader(data))
	for {
		_, err := dec.Token()
		if err == io.EOF {
			return
		}
		require.NoError(t, err)
	}
}

func TestChart(t *testing.T) {
	s, sid := seed(t)
	var buf bytes.Buffer
	require.NoError(t, Chart(context.Background(), orgchart.NewStoreSource(s), sid, &buf, DefaultOptions()))

	out := buf.String()
	wellFormed(t, buf.Bytes())

	// root at (1300,400), child centered below at (1300,640); box padded by 100
	assert.Contains(t, out, `viewBox="1200 300 480 600"`)
	assert.Contains(t, out, `<path d="M 1440 480 L 1440 600 L 1440 600 L 1440 720" stroke="#ff0000" stroke-dasharray="10,5"/>`)
	assert.Contains(t, out, `translate(1300 640)`)
	assert.Contains(t, out, "budi &lt;kades&gt;")
	assert.Contains(t, out, ">B</text>")
	assert.Contains(t, out, "Sekretaris")
	assert.NotContains(t, out, EmptyMessage)
}

func TestChartEmpty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Chart(context.Background(), orgchart.NewStoreSource(memory.New()), "none", &buf, DefaultOptions()))
	wellFormed(t, buf.Bytes())
	assert.Contains(t, buf.String(), EmptyMessage)
}

func TestChartRequiresStructure(t *testing.T) {
	err := Chart(context.Background(), orgchart.NewStoreSource(memory.New()), "", io.Discard, DefaultOptions())
	assert.ErrorIs(t, err, orgchart.ErrStructureRequired)
}

func TestInitial(t *testing.T) {
	assert.Equal(t, "Ä", initial("  ämir"))
	assert.Equal(t, "?", initial(""))
}
