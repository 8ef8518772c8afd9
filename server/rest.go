// Package server exposes the dashboard's data needs over a REST API: overview
// metrics, figure specs, the data explorer, predictions and importances.
package server

import (
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"

	"github.com/emicklei/go-restful/v3"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/lifelens-io/lifelens/dataset"
	"github.com/lifelens-io/lifelens/ensemble"
	"github.com/lifelens-io/lifelens/figure"
	"github.com/lifelens-io/lifelens/pkg/errors"
)

const figureCacheSize = 128

// RestServer serves one loaded table and one trained model. The table and
// model are immutable after construction, so handlers need no locking.
type RestServer struct {
	table  *dataset.Table
	model  *ensemble.RandomForestRegressor
	ranges dataset.FeatureRanges

	// Figure specs are memoized per query, standing in for the host
	// framework's per-page-load caching.
	figures *lru.Cache[string, *figure.Spec]
}

// NewRestServer creates a server over a table, a trained model and its
// feature ranges.
func NewRestServer(table *dataset.Table, model *ensemble.RandomForestRegressor, ranges dataset.FeatureRanges) (*RestServer, error) {
	figures, err := lru.New[string, *figure.Spec](figureCacheSize)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	return &RestServer{table: table, model: model, ranges: ranges, figures: figures}, nil
}

// CreateWebService declares the REST routes.
func (s *RestServer) CreateWebService() *restful.WebService {
	ws := new(restful.WebService)
	ws.Path("/api/v1").Consumes(restful.MIME_JSON).Produces(restful.MIME_JSON)

	ws.Route(ws.GET("/overview").To(s.getOverview).
		Doc("Summary metrics for one year.").
		Param(ws.QueryParameter("year", "year to summarize, defaults to the latest").DataType("int")).
		Writes(OverviewResponse{}))
	ws.Route(ws.GET("/figures/{name}").To(s.getFigure).
		Doc("Figure spec by name: scatter, trends, map, poverty, box, importance.").
		Param(ws.PathParameter("name", "figure name").DataType("string")).
		Param(ws.QueryParameter("year", "year filter").DataType("int")).
		Param(ws.QueryParameter("countries", "comma-separated country filter").DataType("string")).
		Param(ws.QueryParameter("format", "svg or png for server-side rendering").DataType("string")).
		Writes(figure.Spec{}))
	ws.Route(ws.GET("/explorer").To(s.getExplorer).
		Doc("Filtered rows; format=csv streams a download.").
		Param(ws.QueryParameter("countries", "comma-separated country filter").DataType("string")).
		Param(ws.QueryParameter("from", "first year").DataType("int")).
		Param(ws.QueryParameter("to", "last year").DataType("int")).
		Param(ws.QueryParameter("format", "csv for download").DataType("string")).
		Writes(ExplorerResponse{}))
	ws.Route(ws.POST("/predict").To(s.postPredict).
		Doc("Predict life expectancy; inputs are validated against the observed feature ranges.").
		Reads(PredictRequest{}).
		Writes(PredictResponse{}))
	ws.Route(ws.GET("/importance").To(s.getImportance).
		Doc("Ranked feature importances, ascending.").
		Writes([]ensemble.FeatureImportance{}))
	ws.Route(ws.GET("/ranges").To(s.getRanges).
		Doc("Observed feature ranges.").
		Writes(dataset.FeatureRanges{}))
	ws.Route(ws.GET("/preview").To(s.getPreview).
		Doc("Preview the leading rows of an arbitrary hosted CSV.").
		Param(ws.QueryParameter("url", "CSV location").DataType("string")).
		Param(ws.QueryParameter("rows", "rows to return, default 10").DataType("int")).
		Writes(dataset.PreviewResult{}))

	return ws
}

// OverviewResponse is the Global Overview panel payload.
type OverviewResponse struct {
	Summary dataset.Summary `json:"summary"`
	MinYear int             `json:"min_year"`
	MaxYear int             `json:"max_year"`
}

func (s *RestServer) getOverview(req *restful.Request, resp *restful.Response) {
	minYear, maxYear, err := s.table.YearBounds()
	if err != nil {
		writeError(resp, err)
		return
	}
	year, err := intParam(req, "year", maxYear)
	if err != nil {
		writeError(resp, err)
		return
	}
	summary, err := s.table.Summarize(year)
	if err != nil {
		writeError(resp, errors.NewValidationError("year", err.Error(), year))
		return
	}
	writeJSON(resp, OverviewResponse{Summary: summary, MinYear: minYear, MaxYear: maxYear})
}

func (s *RestServer) getFigure(req *restful.Request, resp *restful.Response) {
	name := req.PathParameter("name")
	_, maxYear, err := s.table.YearBounds()
	if err != nil {
		writeError(resp, err)
		return
	}
	year, err := intParam(req, "year", maxYear)
	if err != nil {
		writeError(resp, err)
		return
	}
	countries := listParam(req, "countries")

	cacheKey := fmt.Sprintf("%s|%d|%s", name, year, strings.Join(countries, ","))
	spec, ok := s.figures.Get(cacheKey)
	if !ok {
		spec, err = s.buildFigure(name, year, countries)
		if err != nil {
			writeError(resp, err)
			return
		}
		s.figures.Add(cacheKey, spec)
	}

	switch req.QueryParameter("format") {
	case "":
		writeJSON(resp, spec)
	case "svg":
		resp.Header().Set("Content-Type", "image/svg+xml")
		if err := figure.Render(spec, resp, "svg"); err != nil {
			writeError(resp, err)
		}
	case "png":
		resp.Header().Set("Content-Type", "image/png")
		if err := figure.Render(spec, resp, "png"); err != nil {
			writeError(resp, err)
		}
	default:
		writeError(resp, errors.NewValidationError("format", "must be svg or png", req.QueryParameter("format")))
	}
}

func (s *RestServer) buildFigure(name string, year int, countries []string) (*figure.Spec, error) {
	switch name {
	case "scatter":
		return figure.GDPLifeExpectancyScatter(s.table, year)
	case "poverty":
		return figure.GDPPovertyScatter(s.table, year)
	case "trends":
		return figure.CountryTrends(s.table, countries)
	case "map":
		return figure.WorldMap(s.table, year)
	case "box":
		return figure.LifeExpectancyBox(s.table, year)
	case "importance":
		ranked, err := ensemble.RankedImportances(s.model, dataset.FeatureColumns)
		if err != nil {
			return nil, err
		}
		return figure.ImportanceBar(ranked), nil
	default:
		return nil, errors.NewValidationError("name", "unknown figure", name)
	}
}

// ExplorerResponse is the Data Explorer payload.
type ExplorerResponse struct {
	Rows  []dataset.Row `json:"rows"`
	Total int           `json:"total"`
}

func (s *RestServer) getExplorer(req *restful.Request, resp *restful.Response) {
	minYear, maxYear, err := s.table.YearBounds()
	if err != nil {
		writeError(resp, err)
		return
	}
	from, err := intParam(req, "from", minYear)
	if err != nil {
		writeError(resp, err)
		return
	}
	to, err := intParam(req, "to", maxYear)
	if err != nil {
		writeError(resp, err)
		return
	}

	filtered := s.table.FilterYearRange(from, to)
	if countries := listParam(req, "countries"); len(countries) > 0 {
		filtered = filtered.FilterCountries(countries)
	}

	if req.QueryParameter("format") == "csv" {
		resp.Header().Set("Content-Type", "text/csv")
		resp.Header().Set("Content-Disposition", `attachment; filename="filtered_development_data.csv"`)
		if err := filtered.WriteCSV(resp); err != nil {
			slog.Error("stream explorer CSV", "error", err)
		}
		return
	}
	writeJSON(resp, ExplorerResponse{Rows: filtered.Rows(), Total: filtered.Len()})
}

// PredictRequest is a single prediction input.
type PredictRequest struct {
	GDP         float64 `json:"gdp"`
	PovertyRate float64 `json:"poverty_rate"`
	Year        int     `json:"year"`
}

// PredictResponse is the predicted life expectancy in years.
type PredictResponse struct {
	LifeExpectancy float64 `json:"life_expectancy"`
}

func (s *RestServer) postPredict(req *restful.Request, resp *restful.Response) {
	var in PredictRequest
	if err := req.ReadEntity(&in); err != nil {
		writeError(resp, errors.NewValidationError("body", "malformed request", err.Error()))
		return
	}

	// The model itself never clamps; the range check is the server-side
	// equivalent of the UI's slider bounds.
	inputs := map[string]float64{
		dataset.ColGDPPerCapita: in.GDP,
		dataset.ColPovertyRate:  in.PovertyRate,
		dataset.ColYear:         float64(in.Year),
	}
	for _, feature := range dataset.FeatureColumns {
		if err := s.ranges.Validate(feature, inputs[feature]); err != nil {
			writeError(resp, err)
			return
		}
	}

	pred, err := s.model.PredictOne([]float64{in.GDP, in.PovertyRate, float64(in.Year)})
	if err != nil {
		writeError(resp, err)
		return
	}
	writeJSON(resp, PredictResponse{LifeExpectancy: pred})
}

func (s *RestServer) getImportance(req *restful.Request, resp *restful.Response) {
	ranked, err := ensemble.RankedImportances(s.model, dataset.FeatureColumns)
	if err != nil {
		writeError(resp, err)
		return
	}
	writeJSON(resp, ranked)
}

func (s *RestServer) getRanges(req *restful.Request, resp *restful.Response) {
	writeJSON(resp, s.ranges)
}

func (s *RestServer) getPreview(req *restful.Request, resp *restful.Response) {
	url := req.QueryParameter("url")
	if url == "" {
		writeError(resp, errors.NewValidationError("url", "required", url))
		return
	}
	rows, err := intParam(req, "rows", 10)
	if err != nil {
		writeError(resp, err)
		return
	}

	httpResp, err := http.Get(url)
	if err != nil {
		writeError(resp, errors.Wrapf(err, "fetch preview from %s", url))
		return
	}
	defer httpResp.Body.Close()
	if httpResp.StatusCode != http.StatusOK {
		writeError(resp, errors.NewValidationError("url", "unexpected status "+httpResp.Status, url))
		return
	}

	preview, err := dataset.Preview(httpResp.Body, rows)
	if err != nil {
		writeError(resp, err)
		return
	}
	writeJSON(resp, preview)
}

func intParam(req *restful.Request, name string, fallback int) (int, error) {
	raw := req.QueryParameter(name)
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.NewValidationError(name, "must be an integer", raw)
	}
	return value, nil
}

func listParam(req *restful.Request, name string) []string {
	raw := req.QueryParameter(name)
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
