package main

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"go.uber.org/zap"

	"grid-planner/grid"
	"grid-planner/solve"
)

func newTestServer(t *testing.T) (*plannerServer, *httptest.Server) {
	t.Helper()
	g := grid.NewGrid(20, 15, 10, orb.Point{0, 0})
	g.Border()
	shared := grid.NewShared(g)

	colonyCfg := solve.DefaultColonyConfig()
	colonyCfg.Seed = 3
	colonyCfg.ExploitationChance = 0.9
	s := newPlannerServer(
		shared,
		solve.NewAnyAngle(shared, solve.AnyAngleConfig{StepSize: 10}),
		solve.NewColony(shared, colonyCfg),
		solve.NewTimers(),
		zap.NewNop(),
		0,
	)
	ts := httptest.NewServer(s.routes())
	t.Cleanup(ts.Close)
	return s, ts
}

func postJSON(t *testing.T, url string, body interface{}) *http.Response {
	t.Helper()
	data, err := json.Marshal(body)
	if err != nil {
		t.Fatal(err)
	}
	resp, err := http.Post(url, "application/json", bytes.NewReader(data))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decodeRoute(t *testing.T, resp *http.Response) RouteResponse {
	t.Helper()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status %d", resp.StatusCode)
	}
	var out RouteResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatal(err)
	}
	return out
}

func TestRoute_AnyAngleDirect(t *testing.T) {
	_, ts := newTestServer(t)

	out := decodeRoute(t, postJSON(t, ts.URL+"/route", RouteRequest{
		Start: Point{25, 25},
		End:   Point{175, 125},
	}))
	if !out.Success || out.Fallback || out.Solver != "astar" {
		t.Errorf("got %+v", out)
	}
	if len(out.Path) != 2 || out.Path[0] != (Point{25, 25}) || out.Path[1] != (Point{175, 125}) {
		t.Errorf("path = %v, want direct", out.Path)
	}
	if out.Distance < 180 || out.Distance > 181 {
		t.Errorf("distance = %v", out.Distance)
	}
}

func TestRoute_Colony(t *testing.T) {
	_, ts := newTestServer(t)

	out := decodeRoute(t, postJSON(t, ts.URL+"/route", RouteRequest{
		Start:  Point{25, 25},
		End:    Point{95, 65},
		Solver: "aco",
	}))
	if !out.Success || out.Solver != "aco" || len(out.Path) < 2 {
		t.Fatalf("got %+v", out)
	}
	if out.Path[0] != (Point{25, 25}) || out.Path[len(out.Path)-1] != (Point{95, 65}) {
		t.Errorf("path endpoints %v", out.Path)
	}
}

func TestRoute_FallbackWhenEnclosed(t *testing.T) {
	_, ts := newTestServer(t)

	var cells []CellEdit
	for x := 7; x <= 9; x++ {
		for y := 4; y <= 6; y++ {
			if x != 8 || y != 5 {
				cells = append(cells, CellEdit{X: x, Y: y, Blocked: true})
			}
		}
	}
	postJSON(t, ts.URL+"/walls", WallsRequest{Cells: cells})

	out := decodeRoute(t, postJSON(t, ts.URL+"/route", RouteRequest{
		Start: Point{25, 25},
		End:   Point{85, 55},
	}))
	if out.Success || !out.Fallback || len(out.Path) != 2 || out.Message == "" {
		t.Errorf("got %+v, want the fallback segment", out)
	}
}

func TestRoute_BadRequests(t *testing.T) {
	_, ts := newTestServer(t)

	tests := []struct {
		name string
		body interface{}
		want int
	}{
		{"unknown solver", RouteRequest{Start: Point{25, 25}, End: Point{35, 35}, Solver: "bfs"}, http.StatusBadRequest},
		{"start outside", RouteRequest{Start: Point{-5, 25}, End: Point{35, 35}}, http.StatusBadRequest},
		{"end outside", RouteRequest{Start: Point{25, 25}, End: Point{35, 500}}, http.StatusBadRequest},
		{"not json", "nope", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if resp := postJSON(t, ts.URL+"/route", tt.body); resp.StatusCode != tt.want {
				t.Errorf("status %d, want %d", resp.StatusCode, tt.want)
			}
		})
	}

	resp, err := http.Get(ts.URL + "/route")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("GET /route status %d", resp.StatusCode)
	}
}

func TestRoute_GeoJSON(t *testing.T) {
	_, ts := newTestServer(t)

	resp := postJSON(t, ts.URL+"/route?format=geojson", RouteRequest{Start: Point{25, 25}, End: Point{45, 45}})
	f, err := geojson.UnmarshalFeature(readAll(t, resp))
	if err != nil {
		t.Fatal(err)
	}
	ls, ok := f.Geometry.(orb.LineString)
	if !ok || len(ls) != 2 {
		t.Errorf("geometry = %v", f.Geometry)
	}
	if f.Properties["solver"] != "astar" {
		t.Errorf("properties = %v", f.Properties)
	}
}

func TestWalls_EditAndExport(t *testing.T) {
	s, ts := newTestServer(t)
	before := s.grid.WallCount()

	resp := postJSON(t, ts.URL+"/walls", WallsRequest{
		Cells: []CellEdit{
			{X: 5, Y: 5, Blocked: true},
			{X: 0, Y: 0, Blocked: false},
			{X: 99, Y: 5, Blocked: true},
		},
		Polygons: [][][2]float64{{{101, 101}, {119, 101}, {119, 119}, {101, 119}}},
	})
	var edit map[string]int
	if err := json.NewDecoder(resp.Body).Decode(&edit); err != nil {
		t.Fatal(err)
	}
	if edit["applied"] != 2 || edit["rejected"] != 1 || edit["rasterized"] != 4 {
		t.Errorf("edit = %v", edit)
	}
	if want := before + 1 - 1 + 4; edit["walls"] != want {
		t.Errorf("walls = %d, want %d", edit["walls"], want)
	}

	get, err := http.Get(ts.URL + "/walls")
	if err != nil {
		t.Fatal(err)
	}
	defer get.Body.Close()
	fc, err := geojson.UnmarshalFeatureCollection(readAll(t, get))
	if err != nil {
		t.Fatal(err)
	}
	if len(fc.Features) != s.grid.WallCount() {
		t.Errorf("exported %d features, grid has %d walls", len(fc.Features), s.grid.WallCount())
	}
}

func TestResetAndHealth(t *testing.T) {
	s, ts := newTestServer(t)

	decodeRoute(t, postJSON(t, ts.URL+"/route", RouteRequest{Start: Point{25, 25}, End: Point{65, 25}, Solver: "aco"}))
	if s.colony.Session().BestLength() > 40 {
		t.Fatalf("colony best = %v", s.colony.Session().BestLength())
	}

	if resp := postJSON(t, ts.URL+"/reset", struct{}{}); resp.StatusCode != http.StatusOK {
		t.Fatalf("reset status %d", resp.StatusCode)
	}
	if got := s.colony.Session().BestLength(); got < 1e300 {
		t.Errorf("colony best after reset = %v", got)
	}

	resp, err := http.Get(ts.URL + "/health")
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	var health struct {
		Status string             `json:"status"`
		Width  int                `json:"width"`
		Walls  int                `json:"walls"`
		Timers []solve.TimerStats `json:"timers"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		t.Fatal(err)
	}
	if health.Status != "ready" || health.Width != 20 || health.Walls != 66 {
		t.Errorf("health = %+v", health)
	}
	if len(health.Timers) != 1 || health.Timers[0].Solver != "aco" || health.Timers[0].Count != 0 {
		t.Errorf("timers = %+v", health.Timers)
	}
}

func TestCORSPreflight(t *testing.T) {
	_, ts := newTestServer(t)

	req, _ := http.NewRequest(http.MethodOptions, ts.URL+"/route", nil)
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK || resp.Header.Get("Access-Control-Allow-Origin") != "*" {
		t.Errorf("preflight status %d headers %v", resp.StatusCode, resp.Header)
	}
}

func readAll(t *testing.T, resp *http.Response) []byte {
	t.Helper()
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}
