package httpapi

import (
	"bytes"
	"errors"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/utils"
	"github.com/rs/zerolog/log"

	"github.com/i474232898/goes-imagery/internal/imagery"
	"github.com/i474232898/goes-imagery/internal/pipeline"
	"github.com/i474232898/goes-imagery/internal/render"
	"github.com/i474232898/goes-imagery/internal/store"
)

var validate = validator.New()

// RegisterRoutes wires the HTTP handlers into the Fiber app.
func RegisterRoutes(app *fiber.App, service *pipeline.Service) {
	v1 := app.Group("/api/v1")

	v1.Get("/products", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"products": imagery.Products(),
		})
	})

	v1.Get("/imagery/:product", func(c *fiber.Ctx) error {
		req, err := parseImageryQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		res, err := service.GetImage(c.UserContext(), req.Product, req.At)
		if err != nil {
			return pipelineError(err)
		}

		var buf bytes.Buffer
		if err := res.Figure.WritePNG(&buf); err != nil {
			log.Error().Err(err).Str("run_id", res.RunID).Msg("encode figure")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode figure")
		}
		return sendPNG(c, res, buf.Bytes())
	})

	v1.Get("/imagery/:product/raw", func(c *fiber.Ctx) error {
		req, err := parseImageryQuery(c)
		if err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		// Ask the catalog first so products without raw data never hit the network.
		raw, err := service.ReturnsRawData(req.Product)
		if err != nil {
			return pipelineError(err)
		}
		if !raw {
			return fiber.NewError(fiber.StatusConflict, "product "+req.Product.String()+" does not return raw data")
		}

		res, err := service.GetImage(c.UserContext(), req.Product, req.At)
		if err != nil {
			return pipelineError(err)
		}

		var buf bytes.Buffer
		if err := render.WriteRasterPNG(&buf, res.Raw); err != nil {
			log.Error().Err(err).Str("run_id", res.RunID).Msg("encode raw composite")
			return fiber.NewError(fiber.StatusInternalServerError, "failed to encode raw composite")
		}
		return sendPNG(c, res, buf.Bytes())
	})

	v1.Get("/runs", func(c *fiber.Ctx) error {
		var req runsQuery
		if err := req.bind(c); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}
		if err := validate.Struct(req); err != nil {
			return fiber.NewError(fiber.StatusBadRequest, err.Error())
		}

		runs, err := service.Recent(req.Product, req.Limit)
		if err != nil {
			if errors.Is(err, store.ErrNotFound) {
				return fiber.NewError(fiber.StatusNotFound, "no pipeline runs recorded")
			}
			return fiber.NewError(fiber.StatusInternalServerError, "failed to read run history")
		}

		return c.JSON(fiber.Map{
			"product": req.Product,
			"runs":    runs,
		})
	})
}

func sendPNG(c *fiber.Ctx, res *pipeline.Result, body []byte) error {
	c.Set(fiber.HeaderContentType, "image/png")
	c.Set("X-Query-Time", res.QueryTime)
	c.Set("X-Run-ID", res.RunID)
	return c.Send(body)
}

// pipelineError maps pipeline failures onto HTTP status codes.
func pipelineError(err error) error {
	switch {
	case errors.Is(err, imagery.ErrUnknownProduct):
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	case errors.Is(err, imagery.ErrFetchTimeout):
		return fiber.NewError(fiber.StatusGatewayTimeout, err.Error())
	case errors.Is(err, imagery.ErrFetch),
		errors.Is(err, imagery.ErrDecode),
		errors.Is(err, imagery.ErrInsufficientBands):
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	default:
		return fiber.NewError(fiber.StatusInternalServerError, err.Error())
	}
}

// imageryQuery identifies a product and the instant to resolve it at.
type imageryQuery struct {
	Product imagery.Product `validate:"required"`
	At      time.Time       `validate:"required"`
}

func parseImageryQuery(c *fiber.Ctx) (imageryQuery, error) {
	var q imageryQuery

	// Unknown keys are left to the pipeline so they surface as 404.
	// Params alias the request buffer; the product outlives the request in
	// run history and metric labels.
	q.Product = imagery.Product(utils.CopyString(c.Params("product")))
	q.At = time.Now().UTC()

	if at := c.Query("at"); at != "" {
		ts, err := parseTime(at)
		if err != nil {
			return q, err
		}
		q.At = ts
	}

	if err := validate.Struct(q); err != nil {
		return q, err
	}
	return q, nil
}

// runsQuery holds query parameters for the run history endpoint.
type runsQuery struct {
	Product string `validate:"omitempty,oneof=infrared visible geocolor wv wv_night"`
	Limit   int    `validate:"gte=0,lte=1000"`
}

func (r *runsQuery) bind(c *fiber.Ctx) error {
	r.Product = utils.CopyString(c.Query("product"))

	if s := c.Query("limit"); s != "" {
		n, err := strconv.Atoi(s)
		if err != nil {
			return errors.New("limit must be an integer")
		}
		r.Limit = n
	}
	return nil
}

// parseTime tries to parse either RFC3339 or Unix seconds.
func parseTime(s string) (time.Time, error) {
	if ts, err := time.Parse(time.RFC3339, s); err == nil {
		return ts, nil
	}
	if unix, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Unix(unix, 0).UTC(), nil
	}
	return time.Time{}, errors.New("invalid time format; use RFC3339 or unix seconds")
}
