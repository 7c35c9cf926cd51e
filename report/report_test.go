package report

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/use-agent/jobscout/models"
)

func TestSummarize(t *testing.T) {
	j1 := models.NewJobRecord(1, 1)
	j1.Status = models.JobActive
	j1.DetailURL = "https://x/a"
	j2 := models.NewJobRecord(2, 1)
	j2.Status = models.JobActive
	j3 := models.NewJobRecord(2, 2)
	j3.Status = models.JobExpired
	j3.DetailURL = "https://x/c"
	j4 := models.NewJobRecord(2, 1)

	c1 := models.NewCandidateRecord("Barista")
	c1.Status = models.CandidateSelected
	c2 := models.NewCandidateRecord("Barista")

	s := Summarize([]models.JobRecord{j3, j2, j1, j4}, []models.CandidateRecord{c1, c2})

	require.Len(t, s.Pages, 3)
	assert.Equal(t, PageCount{List: 1, Page: 1, Jobs: 1}, s.Pages[0])
	assert.Equal(t, PageCount{List: 2, Page: 1, Jobs: 2}, s.Pages[1])
	assert.Equal(t, PageCount{List: 2, Page: 2, Jobs: 1}, s.Pages[2])

	assert.Equal(t, 2, s.JobStatus["Tayang"])
	assert.Equal(t, 1, s.JobStatus["Kadaluarsa"])
	assert.Equal(t, 1, s.JobStatus[models.Sentinel])
	assert.Equal(t, 1, s.Candidates["Terpilih"])
	assert.Equal(t, 1, s.Candidates["Tidak ada status"])
	assert.Equal(t, 2, s.MissingURLs)
	assert.Equal(t, 4, s.TotalJobs)
	assert.Equal(t, 2, s.TotalCands)
}

func TestRender(t *testing.T) {
	j := models.NewJobRecord(1, 3)
	j.Status = models.JobActive
	var buf bytes.Buffer
	Render(&buf, Summarize([]models.JobRecord{j}, nil))

	out := buf.String()
	assert.Contains(t, out, "Tayang")
	assert.Contains(t, out, "1 job(s) without a detail URL")
	assert.Contains(t, out, "╭")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	Render(&buf, Summarize(nil, nil))
	assert.NotContains(t, buf.String(), "without a detail URL")
}
