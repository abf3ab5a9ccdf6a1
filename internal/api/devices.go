package api

import (
	"net/http"
	"net/url"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/wildtrace/wildtrace-api/internal/auth"
	"github.com/wildtrace/wildtrace-api/internal/device"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/database"
	"github.com/wildtrace/wildtrace-api/internal/infrastructure/mqtt"
	"github.com/wildtrace/wildtrace-api/internal/query"
	"github.com/wildtrace/wildtrace-api/internal/validation"
)

const entityDevice = "device"

// deviceListParams reads paging, sorting and the name/typeId filters.
func deviceListParams(values url.Values) (device.ListParams, error) {
	lp, err := validation.ParseListParams(values)
	if err != nil {
		return device.ListParams{}, err
	}
	typeID, err := validation.OptionalInt(values, "typeId")
	if err != nil {
		return device.ListParams{}, err
	}
	return device.ListParams{
		Name:   validation.OptionalString(values, "name"),
		TypeID: typeID,
		Page:   lp.Page,
		SortBy: lp.SortBy,
		Order:  lp.Order,
	}, nil
}

// listDevices runs a device listing and writes the page.
func (s *Server) listDevices(w http.ResponseWriter, r *http.Request, p device.ListParams) {
	ctx := r.Context()

	var res query.Result[device.Device]
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		res, err = device.NewSQLiteRepository(conn).List(ctx, p)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writePage(w, p.Page, res)
}

// handleListDevices returns all devices.
//
// Query parameters:
//   - name: substring match on the device name
//   - typeId: filter by sensor type
//   - page, limit, sortBy, order
func (s *Server) handleListDevices(w http.ResponseWriter, r *http.Request) {
	p, err := deviceListParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	s.listDevices(w, r, p)
}

// handleListUserDevices returns the devices owned by the user in the path.
func (s *Server) handleListUserDevices(w http.ResponseWriter, r *http.Request) {
	userID, err := validation.RequiredPath(chi.URLParam(r, "userId"), "userId")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p, err := deviceListParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p.OwnerID = &userID
	s.listDevices(w, r, p)
}

// handleListMyDevices returns the caller's devices.
func (s *Server) handleListMyDevices(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	p, err := deviceListParams(r.URL.Query())
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	p.OwnerID = &id.Subject
	s.listDevices(w, r, p)
}

// handleGetDevice returns a single device with its sensors.
func (s *Server) handleGetDevice(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	deviceID, err := validation.PathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var dev *device.Detail
	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		dev, err = device.NewSQLiteRepository(conn).GetByID(ctx, deviceID)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}
	writeData(w, http.StatusOK, dev)
}

// handleCreateDevice registers a device owned by the caller.
func (s *Server) handleCreateDevice(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()

	var req device.CreateRequest
	if err := validation.DecodeJSON(r.Body, &req); err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	var dev *device.Device
	err := s.db.WithConn(ctx, func(conn database.Conn) error {
		var err error
		dev, err = device.NewSQLiteRepository(conn).Create(ctx, id.Subject, req)
		return err
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityDevice, mqtt.ActionCreated, strconv.FormatInt(dev.ID, 10), id.Subject)
	writeData(w, http.StatusCreated, dev)
}

// handleDeleteDevice removes one of the caller's devices.
func (s *Server) handleDeleteDevice(w http.ResponseWriter, r *http.Request, id auth.Identity) {
	ctx := r.Context()
	deviceID, err := validation.PathID(chi.URLParam(r, "id"), "id")
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	err = s.db.WithConn(ctx, func(conn database.Conn) error {
		return device.NewSQLiteRepository(conn).Delete(ctx, deviceID, id.Subject)
	})
	if err != nil {
		s.writeServiceError(w, r, err)
		return
	}

	s.notify(ctx, entityDevice, mqtt.ActionDeleted, strconv.FormatInt(deviceID, 10), id.Subject)
	writeNoContent(w)
}
