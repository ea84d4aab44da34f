package http

import (
	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/finance"
)

// FinanceHandler maneja cuentas bancarias y sus transacciones (protegido, admin).
type FinanceHandler struct {
	uc *finance.AccountUseCase
}

// NewFinanceHandler construye el handler.
func NewFinanceHandler(uc *finance.AccountUseCase) *FinanceHandler {
	return &FinanceHandler{uc: uc}
}

// CreateAccount godoc
// @Summary      Crear cuenta bancaria o caja
// @Tags         finance
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.CreateBankAccountRequest  true  "name, number, opening_balance"
// @Success      201   {object}  dto.BankAccountResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/bank-accounts [post]
func (h *FinanceHandler) CreateAccount(c *fiber.Ctx) error {
	var in dto.CreateBankAccountRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	out, err := h.uc.Create(c.UserContext(), in)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// GetAccount godoc
// @Summary      Obtener cuenta
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        id   path  string  true  "ID de la cuenta"
// @Success      200  {object}  dto.BankAccountResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bank-accounts/{id} [get]
func (h *FinanceHandler) GetAccount(c *fiber.Ctx) error {
	out, err := h.uc.Get(c.UserContext(), c.Params("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}

// ListTransactions godoc
// @Summary      Transacciones de la cuenta (más recientes primero)
// @Tags         finance
// @Security     Bearer
// @Produce      json
// @Param        id      path   string  true   "ID de la cuenta"
// @Param        limit   query  int     false  "Límite"  default(20)
// @Param        offset  query  int     false  "Offset"  default(0)
// @Success      200  {object}  dto.FinancialTransactionListResponse
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/bank-accounts/{id}/transactions [get]
func (h *FinanceHandler) ListTransactions(c *fiber.Ctx) error {
	page := dto.NewPageRequest(c.QueryInt("limit"), c.QueryInt("offset"))
	out, err := h.uc.ListTransactions(c.UserContext(), c.Params("id"), page)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(out)
}
