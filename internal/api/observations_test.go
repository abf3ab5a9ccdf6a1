package api

import (
	"net/http"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wildtrace/wildtrace-api/internal/observation"
	"github.com/wildtrace/wildtrace-api/internal/submission"
	"github.com/wildtrace/wildtrace-api/internal/testdb"
)

func observationBody(extra map[string]any) map[string]any {
	body := map[string]any{
		"type":     "transect",
		"time":     "2026-06-14T07:30:00Z",
		"location": map[string]any{"latitude": 50.85, "longitude": 4.35},
		"wind":     "light",
		"season":   "Summer",
		"consent":  true,
		"sightings": []map[string]any{
			{"group_name": "sparrows", "estimated_count": 12, "behavior": "feeding"},
		},
	}
	for k, v := range extra {
		body[k] = v
	}
	return body
}

func TestObservationLifecycle(t *testing.T) {
	env := newTestEnv(t)
	owner := token(t, "walker")

	rec := env.do(t, http.MethodPost, "/field-observations", owner, observationBody(nil))
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	created := decode[dataEnvelope[observation.Detail]](t, rec).Data
	assert.Equal(t, "walker", created.UserID)
	require.Len(t, created.Sightings, 1)
	assert.Equal(t, created.ID, created.Sightings[0].FieldObservationID)
	assert.Contains(t, rec.Body.String(), `"fieldObservationId"`)
	assert.Contains(t, rec.Body.String(), `"user_id":"walker"`)

	path := "/field-observations/" + created.ID

	rec = env.do(t, http.MethodPost, path+"/sightings", owner, map[string]any{"group_name": "robins", "estimated_count": 2})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())

	rec = env.do(t, http.MethodPost, path+"/sightings", token(t, "intruder"), map[string]any{"group_name": "x", "estimated_count": 1})
	assertError(t, rec, http.StatusNotFound, ErrCategoryNotFound, "Field observation not found")

	rec = env.do(t, http.MethodGet, path, "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Len(t, decode[dataEnvelope[observation.Detail]](t, rec).Data.Sightings, 2)

	rec = env.do(t, http.MethodGet, "/field-observations/user/walker", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	page := decode[pageEnvelope[observation.FieldObservation]](t, rec)
	assert.Equal(t, 1, page.Pagination.TotalCount)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, token(t, "intruder"), nil).Code)
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, owner, nil).Code)
	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodGet, path, "", nil).Code)
	assert.Equal(t, 0, testdb.Count(t, env.db, "field_observation_sightings"))
}

func TestCreateObservation_ClientID(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.NewString()
	body := observationBody(map[string]any{"id": id})

	rec := env.do(t, http.MethodPost, "/field-observations", token(t, "walker"), body)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	assert.Equal(t, id, decode[dataEnvelope[observation.Detail]](t, rec).Data.ID)

	rec = env.do(t, http.MethodPost, "/field-observations", token(t, "walker"), body)
	assertError(t, rec, http.StatusConflict, ErrCategoryConflict, "")
}

func TestCreateObservation_Validation(t *testing.T) {
	env := newTestEnv(t)
	tok := token(t, "walker")

	tests := []struct {
		name string
		body map[string]any
	}{
		{"unknown type", observationBody(map[string]any{"type": "census"})},
		{"missing time", observationBody(map[string]any{"time": nil})},
		{"missing location", observationBody(map[string]any{"location": nil})},
		{"latitude out of range", observationBody(map[string]any{"location": map[string]any{"latitude": 91, "longitude": 0}})},
		{"empty location", observationBody(map[string]any{"location": map[string]any{}})},
		{"location without longitude", observationBody(map[string]any{"location": map[string]any{"latitude": 1}})},
		{"unknown wind", observationBody(map[string]any{"wind": "gale"})},
		{"temperature out of range", observationBody(map[string]any{"temperature": 99})},
		{"sighting without group", observationBody(map[string]any{"sightings": []map[string]any{{"estimated_count": 1}}})},
		{"sighting with negative count", observationBody(map[string]any{"sightings": []map[string]any{{"group_name": "x", "estimated_count": -1}}})},
		{"id not a uuid", observationBody(map[string]any{"id": "abc"})},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := env.do(t, http.MethodPost, "/field-observations", tok, tt.body)
			assertError(t, rec, http.StatusBadRequest, ErrCategoryValidation, "")
		})
	}
	assert.Equal(t, 0, testdb.Count(t, env.db, "field_observations"))
}

func TestCreateObservation_ZeroCoordinates(t *testing.T) {
	env := newTestEnv(t)
	body := observationBody(map[string]any{"location": map[string]any{"latitude": 0, "longitude": 0}})

	rec := env.do(t, http.MethodPost, "/field-observations", token(t, "walker"), body)
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	loc := decode[dataEnvelope[observation.Detail]](t, rec).Data.Location
	assert.Zero(t, loc.Latitude)
	assert.Zero(t, loc.Longitude)
}

func TestGetObservation_BadID(t *testing.T) {
	env := newTestEnv(t)
	assertError(t, env.do(t, http.MethodGet, "/field-observations/not-a-uuid", "", nil),
		http.StatusBadRequest, ErrCategoryValidation, "")
	assertError(t, env.do(t, http.MethodGet, "/field-observations/"+uuid.NewString(), "", nil),
		http.StatusNotFound, ErrCategoryNotFound, "")
}

func TestSubmissionLifecycle(t *testing.T) {
	env := newTestEnv(t)
	owner := token(t, "counter")

	rec := env.do(t, http.MethodPost, "/submissions", owner, map[string]any{
		"type":     "fit",
		"date":     "2026-07-03",
		"time":     "17:45",
		"location": "Back garden",
		"sightings": []map[string]any{
			{"group_name": "bumblebees", "estimated_count": 8},
		},
	})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	created := decode[dataEnvelope[submission.Detail]](t, rec).Data
	assert.Equal(t, "2026-07-03", created.Date)
	require.Len(t, created.Sightings, 1)
	assert.Equal(t, created.ID, created.Sightings[0].SubmissionID)

	path := "/submissions/" + created.ID

	rec = env.do(t, http.MethodPost, path+"/sightings", owner, map[string]any{"group_name": "hoverflies", "estimated_count": 3})
	require.Equal(t, http.StatusCreated, rec.Code, "body: %s", rec.Body.String())
	added := decode[dataEnvelope[submission.Sighting]](t, rec).Data
	assert.Equal(t, "hoverflies", added.GroupName)

	rec = env.do(t, http.MethodGet, "/submissions/user/counter?sortBy=date", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1, decode[pageEnvelope[submission.Submission]](t, rec).Pagination.TotalCount)

	assert.Equal(t, http.StatusNotFound, env.do(t, http.MethodDelete, path, token(t, "other"), nil).Code)
	require.Equal(t, http.StatusNoContent, env.do(t, http.MethodDelete, path, owner, nil).Code)
	assertError(t, env.do(t, http.MethodGet, path, "", nil), http.StatusNotFound, ErrCategoryNotFound, "Submission not found")
	assert.Equal(t, 0, testdb.Count(t, env.db, "submission_sightings"))
}

func TestCreateSubmission_Validation(t *testing.T) {
	env := newTestEnv(t)
	tok := token(t, "counter")

	for name, body := range map[string]map[string]any{
		"bad date":        {"type": "fit", "date": "03/07/2026"},
		"impossible date": {"type": "fit", "date": "2026-13-45"},
		"bad time":        {"type": "fit", "date": "2026-07-03", "time": "25:00"},
		"missing type":    {"date": "2026-07-03"},
	} {
		t.Run(name, func(t *testing.T) {
			assertError(t, env.do(t, http.MethodPost, "/submissions", tok, body), http.StatusBadRequest, ErrCategoryValidation, "")
		})
	}
	assert.Equal(t, http.StatusUnauthorized,
		env.do(t, http.MethodPost, "/submissions", "", map[string]any{"type": "fit", "date": "2026-07-03"}).Code)
}
