package http

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/jmehdipour/lunchly/internal/model"
	"github.com/jmehdipour/lunchly/internal/service/customers"
	"github.com/labstack/echo/v4"
	"go.uber.org/zap"
)

type customerView struct {
	model.Customer
	FullName string `json:"full_name"`
}

func viewOf(c model.Customer) customerView {
	return customerView{Customer: c, FullName: c.FullName()}
}

type bestCustomerView struct {
	customerView
	ReservationCount int64 `json:"reservation_count"`
}

type reservationReq struct {
	StartAt    time.Time `json:"start_at"`
	NumGuests  int       `json:"num_guests"`
	Notes      *string   `json:"notes"`
	BookingRef *string   `json:"booking_ref"`
}

func parseID(c echo.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	return id, err == nil && id > 0
}

func listCustomersHandler(svc *customers.Service, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		list, err := svc.Search(c.Request().Context(), c.QueryParam("q"))
		if err != nil {
			return respondError(c, log, err)
		}

		out := make([]customerView, 0, len(list))
		for _, cu := range list {
			out = append(out, viewOf(cu))
		}
		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(out),
			"results": out,
		})
	}
}

func bestCustomersHandler(svc *customers.Service, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		best, err := svc.Best(c.Request().Context())
		if err != nil {
			return respondError(c, log, err)
		}

		out := make([]bestCustomerView, 0, len(best))
		for _, b := range best {
			out = append(out, bestCustomerView{customerView: viewOf(b.Customer), ReservationCount: b.ReservationCount})
		}
		return c.JSON(http.StatusOK, map[string]any{
			"count":   len(out),
			"results": out,
		})
	}
}

func getCustomerHandler(svc *customers.Service, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, "invalid customer id")
		}

		cu, err := svc.Get(c.Request().Context(), id)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(http.StatusOK, viewOf(*cu))
	}
}

func bindInput(c echo.Context) (customers.Input, bool) {
	var in customers.Input
	if err := c.Bind(&in); err != nil {
		return in, false
	}
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	return in, true
}

func createCustomerHandler(svc *customers.Service, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		in, ok := bindInput(c)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, "bad request")
		}

		cu, err := svc.Create(c.Request().Context(), in)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(http.StatusCreated, viewOf(*cu))
	}
}

func updateCustomerHandler(svc *customers.Service, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, "invalid customer id")
		}
		in, ok := bindInput(c)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, "bad request")
		}

		cu, err := svc.Update(c.Request().Context(), id, in)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(http.StatusOK, viewOf(*cu))
	}
}

func listReservationsHandler(svc *customers.Service, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, "invalid customer id")
		}

		res, err := svc.Reservations(c.Request().Context(), id)
		if err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(http.StatusOK, map[string]any{
			"customer_id": id,
			"count":       len(res),
			"results":     res,
		})
	}
}

func addReservationHandler(svc *customers.Service, log *zap.Logger) echo.HandlerFunc {
	return func(c echo.Context) error {
		id, ok := parseID(c)
		if !ok {
			return errorJSON(c, http.StatusBadRequest, "invalid customer id")
		}

		var req reservationReq
		if err := c.Bind(&req); err != nil {
			return errorJSON(c, http.StatusBadRequest, "bad request")
		}

		r := &model.Reservation{
			CustomerID: id,
			StartAt:    req.StartAt,
			NumGuests:  req.NumGuests,
			Notes:      req.Notes,
			BookingRef: req.BookingRef,
		}
		if err := svc.AddReservation(c.Request().Context(), r); err != nil {
			return respondError(c, log, err)
		}
		return c.JSON(http.StatusCreated, r)
	}
}
