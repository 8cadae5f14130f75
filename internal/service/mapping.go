package service

import (
	"errors"

	"pharmapos/internal/dto"
	"pharmapos/internal/model"
	"pharmapos/internal/repository"
)

// notFound maps a repository miss onto ErrNotFound and passes anything
// else through.
func notFound(err error) error {
	if errors.Is(err, repository.ErrNotFound) {
		return ErrNotFound
	}
	return err
}

func productToResponse(p *model.Product) dto.ProductResponse {
	return dto.ProductResponse{
		ID:            p.ID,
		Name:          p.Name,
		Category:      p.Category,
		Price:         p.Price,
		Cost:          p.Cost,
		StockQuantity: p.StockQuantity,
		MinimumStock:  p.MinimumStock,
		BatchNumber:   p.BatchNumber,
		Manufacturer:  p.Manufacturer,
		ExpiryDate:    p.ExpiryDate,
		Description:   p.Description,
		CreatedAt:     p.CreatedAt,
		UpdatedAt:     p.UpdatedAt,
	}
}

func productsToResponse(ps []model.Product) []dto.ProductResponse {
	out := make([]dto.ProductResponse, len(ps))
	for i := range ps {
		out[i] = productToResponse(&ps[i])
	}
	return out
}

func customerToResponse(c *model.Customer) dto.CustomerResponse {
	return dto.CustomerResponse{
		ID:                 c.ID,
		Name:               c.Name,
		Email:              c.Email,
		Phone:              c.Phone,
		Address:            c.Address,
		OutstandingBalance: c.OutstandingBalance,
		CreatedAt:          c.CreatedAt,
		UpdatedAt:          c.UpdatedAt,
	}
}

func historyToResponse(h *model.PaymentHistory) dto.PaymentHistoryResponse {
	return dto.PaymentHistoryResponse{
		ID:          h.ID,
		Amount:      h.Amount,
		Notes:       h.Notes,
		PaymentDate: h.PaymentDate,
		CreatedAt:   h.CreatedAt,
	}
}

func accountToResponse(a *model.Account) dto.AccountResponse {
	return dto.AccountResponse{
		ID:        a.ID,
		Email:     a.Email,
		FirstName: a.FirstName,
		LastName:  a.LastName,
		CreatedAt: a.CreatedAt,
	}
}
