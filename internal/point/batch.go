package point

import (
	"sort"

	"github.com/influxdata/influxdb-client-go/v2/api/write"

	"github.com/adrianlzt/graphios/internal/perfdata"
)

// Batches groups points by project. Each project is written to the
// database of the same name.
type Batches map[string][]*Point

// Group converts every record and groups the points by project.
// Records without a project land in perfdata.DefaultProject.
func Group(records []*perfdata.Record, extraTags map[string]string) Batches {
	batches := make(Batches)
	for _, rec := range records {
		project := rec.ProjectName()
		batches[project] = append(batches[project], FromRecord(rec, extraTags))
	}
	return batches
}

// Projects returns the project names in sorted order.
func (b Batches) Projects() []string {
	projects := make([]string, 0, len(b))
	for p := range b {
		projects = append(projects, p)
	}
	sort.Strings(projects)
	return projects
}

// Len returns the total number of points across all projects.
func (b Batches) Len() int {
	n := 0
	for _, pts := range b {
		n += len(pts)
	}
	return n
}

// ToWrite converts the points of one project for the InfluxDB client.
func (b Batches) ToWrite(project string) []*write.Point {
	pts := b[project]
	out := make([]*write.Point, len(pts))
	for i, p := range pts {
		out[i] = p.ToWrite()
	}
	return out
}
