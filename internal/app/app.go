// Package app wires repositories and domain services on top of one
// PostgreSQL pool. The server, worker and seed commands share it.
package app

import (
	"context"

	"backoffice/internal/config"
	"backoffice/internal/core/types"
	"backoffice/internal/domain/inventory"
	"backoffice/internal/domain/invoice"
	"backoffice/internal/domain/payments"
	"backoffice/internal/domain/reports"
	"backoffice/internal/domain/returns"
	"backoffice/internal/domain/sales"
	"backoffice/internal/domain/sellers"
	"backoffice/internal/infrastructure/storage/postgres"
	"backoffice/internal/infrastructure/storage/postgres/catalog_repo"
	"backoffice/internal/infrastructure/storage/postgres/document_repo"
	"backoffice/internal/infrastructure/storage/postgres/register_repo"
	"backoffice/internal/infrastructure/storage/postgres/report_repo"
	"backoffice/pkg/numerator"
)

// Services are the domain services of the back office.
type Services struct {
	Inventory *inventory.Service
	Sellers   *sellers.Service
	Sales     *sales.Service
	Returns   *returns.Service
	Payments  *payments.Service
	Invoices  *invoice.Service
	Reports   *reports.Service
	Numerator *numerator.Service
}

// InventoryConfig maps settings onto the inventory service config.
func InventoryConfig(cfg *config.Config) inventory.Config {
	ic := inventory.DefaultConfig()
	if cfg.AllocatorPageSize > 0 {
		ic.AllocatorPageSize = cfg.AllocatorPageSize
	}
	if cfg.ExpiryWarningDays > 0 {
		ic.ExpiryWarningDays = cfg.ExpiryWarningDays
	}
	if cfg.NearStockMargin >= 0 {
		ic.NearMargin = types.Quantity(cfg.NearStockMargin)
	}
	return ic
}

// NewServices builds every service. cache may be nil.
func NewServices(txm *postgres.TxManager, ic inventory.Config, cache reports.Cache) *Services {
	numbers := numerator.New(func(ctx context.Context) numerator.Querier {
		return txm.GetQuerier(ctx)
	})

	inv := inventory.NewService(
		catalog_repo.NewProductRepo(txm),
		register_repo.NewLedgerRepo(txm),
		txm,
		ic,
	)
	sel := sellers.NewService(catalog_repo.NewSellerRepo(txm), txm)
	sal := sales.NewService(document_repo.NewSaleRepo(txm), inv, sel, numbers, txm)

	return &Services{
		Inventory: inv,
		Sellers:   sel,
		Sales:     sal,
		Returns:   returns.NewService(document_repo.NewReturnRepo(txm), inv, sel, numbers, txm),
		Payments:  payments.NewService(catalog_repo.NewPaymentRepositories(txm), payments.SellerLookup(sel.Get)),
		Invoices:  invoice.NewService(sal, sel, invoice.JSONRenderer{}),
		Reports:   reports.NewService(report_repo.NewReportRepo(txm), inv, cache),
		Numerator: numbers,
	}
}
