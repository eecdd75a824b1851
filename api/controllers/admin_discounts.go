package controllers

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/paintmart/paintmart-backend/api/responses"
	"github.com/paintmart/paintmart-backend/api/validators"
	discountsvc "github.com/paintmart/paintmart-backend/internal/discounts"
	"github.com/paintmart/paintmart-backend/pkg/enums"
	pkgerrors "github.com/paintmart/paintmart-backend/pkg/errors"
	"github.com/paintmart/paintmart-backend/pkg/logger"
)

type tierRequest struct {
	ConditionType string          `json:"condition_type" validate:"required"`
	MinValue      int64           `json:"min_value" validate:"min=0"`
	Percent       decimal.Decimal `json:"percent" validate:"required"`
}

type discountRequest struct {
	Name            string           `json:"name" validate:"required"`
	Type            string           `json:"type" validate:"required"`
	TargetType      string           `json:"target_type" validate:"required"`
	TargetIDs       []string         `json:"target_ids,omitempty" validate:"dive,uuid"`
	DiscountPercent *decimal.Decimal `json:"discount_percent,omitempty"`
	IsActive        bool             `json:"is_active"`
	StartSale       time.Time        `json:"start_sale" validate:"required"`
	EndSale         *time.Time       `json:"end_sale,omitempty"`
	Tiers           []tierRequest    `json:"tiers,omitempty" validate:"dive"`
}

func (req discountRequest) toInput() (discountsvc.DiscountInput, error) {
	discountType, err := enums.ParseDiscountType(req.Type)
	if err != nil {
		return discountsvc.DiscountInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount type")
	}
	targetType, err := enums.ParseDiscountTarget(req.TargetType)
	if err != nil {
		return discountsvc.DiscountInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid discount target type")
	}

	targetIDs := make([]uuid.UUID, 0, len(req.TargetIDs))
	for _, raw := range req.TargetIDs {
		id, err := validators.ParseUUIDString(raw, "target_ids")
		if err != nil {
			return discountsvc.DiscountInput{}, err
		}
		targetIDs = append(targetIDs, id)
	}

	tiers := make([]discountsvc.TierInput, 0, len(req.Tiers))
	for _, tier := range req.Tiers {
		condition, err := enums.ParseTierCondition(tier.ConditionType)
		if err != nil {
			return discountsvc.DiscountInput{}, pkgerrors.New(pkgerrors.CodeValidation, "invalid tier condition type")
		}
		tiers = append(tiers, discountsvc.TierInput{
			ConditionType: condition,
			MinValue:      tier.MinValue,
			Percent:       tier.Percent,
		})
	}

	return discountsvc.DiscountInput{
		Name:            req.Name,
		Type:            discountType,
		TargetType:      targetType,
		TargetIDs:       targetIDs,
		DiscountPercent: req.DiscountPercent,
		IsActive:        req.IsActive,
		StartSale:       req.StartSale,
		EndSale:         req.EndSale,
		Tiers:           tiers,
	}, nil
}

// AdminCreateDiscount registers a new discount with its tiers.
func AdminCreateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := svc.Create(r.Context(), input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccessStatus(w, http.StatusCreated, discount)
	}
}

// AdminUpdateDiscount replaces a discount's definition, tiers included.
func AdminUpdateDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		discountID, err := validators.ParseUUIDParam(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload discountRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		input, err := payload.toInput()
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := svc.Update(r.Context(), discountID, input)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discount)
	}
}

// AdminDeleteDiscount removes a discount and its tiers for good.
func AdminDeleteDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		discountID, err := validators.ParseUUIDParam(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.Delete(r.Context(), discountID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, map[string]string{"status": "deleted"})
	}
}

// AdminGetDiscount returns one discount with its tiers.
func AdminGetDiscount(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		discountID, err := validators.ParseUUIDParam(r, "discountId")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		discount, err := svc.Get(r.Context(), discountID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, discount)
	}
}

// AdminListDiscounts pages through all discounts.
func AdminListDiscounts(svc discountsvc.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "discount service unavailable"))
			return
		}

		params, err := validators.ParsePagination(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.List(r.Context(), params)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, page)
	}
}
