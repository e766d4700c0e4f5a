package converter

import (
	"errors"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/kylycht/currconv/model"
	"github.com/kylycht/currconv/storage"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// Places of the rendered conversion results
const Places = 4

func New(cache storage.Cache) *Converter {
	return &Converter{cache: cache}
}

type Converter struct {
	cache storage.Cache
}

// Register mounts the converter routes.
func (c *Converter) Register(router fiber.Router) {
	router.Get("/convert", c.Convert)
	router.Get("/rate", c.Rate)
	router.Get("/rates", c.Rates)
	router.Post("/refresh", c.Refresh)
}

type currencyResponse struct {
	Code     string          `json:"code"`
	Name     string          `json:"name"`
	Amount   int             `json:"amount"`
	LotCost  decimal.Decimal `json:"lot_cost"`
	UnitCost decimal.Decimal `json:"unit_cost"`
}

type ratesResponse struct {
	Date       string             `json:"date"`
	Total      int                `json:"total"`
	Currencies []currencyResponse `json:"currencies"`
}

// Convert godoc
//
//	@Summary		Convert amount between two currencies
//	@Description	cross conversion through RUB
//	@Tags			converter
//	@Param			from	query	string	true	"From Currency" example(USD)
//	@Param			to		query	string	true	"To Currency"   example(EUR)
//	@Param			amount	query	number	false	"Amount"        example(3.1)
//	@Success		200	{string}	string "2.6601"
//	@Failure		400	{string}	string "invalid amount \"x\""
//	@Failure		404	{string}	string "not found: no currency with code CNY in rates for 17.10.2026"
//	@Router			/convert [get]
func (c *Converter) Convert(ctx *fiber.Ctx) error {
	from, to, err := pair(ctx)
	if err != nil {
		return err
	}

	raw := ctx.Query("amount", "1")
	amount, err := model.ParseDecimal(raw)
	if err != nil {
		return fiber.NewError(fiber.StatusBadRequest, fmt.Sprintf("invalid amount %q, expected a decimal number", raw))
	}

	result, err := c.cache.Table().Convert(amount, from, to)
	if err != nil {
		return queryError(err)
	}

	log.Debug().Str(from, to).Str("amount", amount.String()).Msg("converting")

	return ctx.SendString(result.StringFixed(Places))
}

// Rate godoc
//
//	@Summary		Rate of one currency unit in another
//	@Tags			converter
//	@Param			from	query	string	true	"From Currency" example(USD)
//	@Param			to		query	string	true	"To Currency"   example(EUR)
//	@Success		200	{string}	string "0.8582"
//	@Failure		404	{string}	string "not found: no currency with code XXX in rates for 17.10.2026"
//	@Router			/rate [get]
func (c *Converter) Rate(ctx *fiber.Ctx) error {
	from, to, err := pair(ctx)
	if err != nil {
		return err
	}

	rate, err := c.cache.Table().Rate(from, to)
	if err != nil {
		return queryError(err)
	}

	return ctx.SendString(rate.StringFixed(Places))
}

// Rates godoc
//
//	@Summary		List every known currency
//	@Tags			converter
//	@Produce		json
//	@Success		200	{object}	ratesResponse
//	@Router			/rates [get]
func (c *Converter) Rates(ctx *fiber.Ctx) error {
	return ctx.JSON(summary(c.cache.Table()))
}

// Refresh godoc
//
//	@Summary		Reload rates from the bank now
//	@Tags			converter
//	@Produce		json
//	@Success		200	{object}	ratesResponse
//	@Failure		502	{string}	string "fetch rates for 17.10.2026 (5 attempts): ..."
//	@Router			/refresh [post]
func (c *Converter) Refresh(ctx *fiber.Ctx) error {
	if err := c.cache.Refresh(ctx.UserContext()); err != nil {
		log.Error().Err(err).Msg("manual refresh failed")
		return fiber.NewError(fiber.StatusBadGateway, err.Error())
	}

	return ctx.JSON(summary(c.cache.Table()))
}

func pair(ctx *fiber.Ctx) (string, string, error) {
	from := strings.ToUpper(strings.TrimSpace(ctx.Query("from")))
	to := strings.ToUpper(strings.TrimSpace(ctx.Query("to")))

	for _, code := range []string{from, to} {
		if !model.IsValidCode(code) {
			return "", "", fiber.NewError(fiber.StatusBadRequest,
				fmt.Sprintf("invalid currency code %q, expected 3 latin letters", code))
		}
	}

	return from, to, nil
}

func queryError(err error) error {
	if errors.Is(err, model.ErrNotFound) {
		return fiber.NewError(fiber.StatusNotFound, err.Error())
	}
	return err
}

func summary(table *model.Table) ratesResponse {
	currencies := table.Currencies()

	resp := ratesResponse{
		Date:       table.Date().Format(model.DateFormat),
		Total:      len(currencies),
		Currencies: make([]currencyResponse, 0, len(currencies)),
	}
	for _, c := range currencies {
		resp.Currencies = append(resp.Currencies, currencyResponse{
			Code:     c.Code(),
			Name:     c.Name(),
			Amount:   c.Amount(),
			LotCost:  c.LotCost(),
			UnitCost: c.UnitCost(),
		})
	}

	return resp
}
