package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wildtrace/wildtrace-api/internal/auth"
	"github.com/wildtrace/wildtrace-api/internal/event"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/mqtt"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/validation"
)

const entityEvent = "event"

// eventListParams reads paging, sorting and the event filters shared by
// every event listing.
func eventListParams(values url.Values) (event.ListParams, error) {
	lp, err := validation.ParseListParams(values)
	if err != nil {
		return event.ListParams{}, err
	}
	deviceID, err := validation.OptionalInt(values, "deviceId")
	if err != nil {
		return event.ListParams{}, err
	}
	hasMedia, err := validation.OptionalBool(values, "hasMedia")
	if err != nil {
		return event.ListParams{}, err
	}
	start, err := validation.OptionalTime(values, "startDate")
	if err != nil {
		return event.ListParams{}, err
	}
	end, err := validation.OptionalTime(values, "endDate")
	if err != nil {
		return event.ListParams{}, err
	}
	if start != nil && end != nil && end.Before(*start) {
		return event.ListParams{}, validation.Errorf("endDate", "gtefield", "endDate must not be before startDate")
	}

	return event.ListParams{
		DeviceID: deviceID,
		HasMedia: hasMedia,
		Start:    start,
		End:      end,
		Page:     lp.Page,
		SortBy:   lp.SortBy,
		Order:    lp.Order,
	}, nil
}

func (s *Server) listEvents(w http.ResponseWriter, r *http.Request, p event.ListParams) {
	ctx := r.Context()

	var res query.Result[event.Event]
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		res, err = event.NewSQLiteRepository(conn).List(ctx, p)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePage(w, p.Page, res)
}

// handleListEvents returns all events.
//
// Query parameters:
//   - deviceId: only events recorded by this device
//   - hasMedia: true keeps events with media; false keeps events without
//     media that carry a positive sensor reading
//   - startDate, endDate: RFC 3339 bounds on the event time
//   - page, limit, sortBy, order
func (s *Server) handleListEvents(w http.ResponseWriter, r *http.Request) {
	p, err := eventListParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.listEvents(w, r, p)
}

// handleListDeviceEvents returns events recorded by the device named in the path.
func (s *Server) handleListDeviceEvents(w http.ResponseWriter, r *http.Request) {
	name, err := validation.RequiredPath(chi.URLParam(r, "deviceName"), "deviceName")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p, err := eventListParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p.DeviceName = &name
	s.listEvents(w, r, p)
}

// handleListUserEvents returns events recorded by devices the user owns.
func (s *Server) handleListUserEvents(w http.ResponseWriter, r *http.Request) {
	userID, err := validation.RequiredPath(chi.URLParam(r, "userId"), "userId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p, err := eventListParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p.OwnerID = &userID
	s.listEvents(w, r, p)
}

// handleGetEvent returns one event with regions, sensor data and media.
func (s *Server) handleGetEvent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	eventID, err := validation.PathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var ev *event.Event
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		ev, err = event.NewSQLiteRepository(conn).GetByID(ctx, eventID)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, ev)
}

// handleDeleteEvent removes an event recorded by one of the caller's devices.
func (s *Server) handleDeleteEvent(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	eventID, err := validation.PathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		return event.NewSQLiteRepository(conn).Delete(ctx, eventID, id.Subject)
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityEvent, mqtt.ActionDeleted, strconv.FormatInt(eventID, 10), id.Subject)
	writeNoContent(w)
}

// handleVerifyEvent marks an event as verified by the caller.
func (s *Server) handleVerifyEvent(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	eventID, err := validation.PathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var ev *event.Event
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		ev, err = event.NewSQLiteRepository(conn).Verify(ctx, eventID, id.Subject)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityEvent, mqtt.ActionVerified, strconv.FormatInt(eventID, 10), id.Subject)
	writeData(w, http.StatusOK, ev)
}
