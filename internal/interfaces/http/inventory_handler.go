package http

import (
	"bytes"
	"encoding/base64"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/jhoicas/inventario-lotes/internal/application/dto"
	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
	"github.com/jhoicas/inventario-lotes/internal/application/usecase"
	"github.com/jhoicas/inventario-lotes/internal/domain/entity"
	"github.com/jhoicas/inventario-lotes/internal/domain/repository"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// ImportParser convierte un archivo subido en filas de importación según su nombre.
type ImportParser func(filename string, r io.Reader) ([]inventory.ImportRow, error)

// InventoryHandler maneja lotes, salidas, kardex e importaciones (protegido).
type InventoryHandler struct {
	engine   *inventory.Engine
	ledger   *inventory.Ledger
	reports  *inventory.ReportUseCase
	importer *inventory.ImportUseCase
	parse    ImportParser
}

// NewInventoryHandler construye el handler.
func NewInventoryHandler(engine *inventory.Engine, ledger *inventory.Ledger, reports *inventory.ReportUseCase, importer *inventory.ImportUseCase, parse ImportParser) *InventoryHandler {
	return &InventoryHandler{engine: engine, ledger: ledger, reports: reports, importer: importer, parse: parse}
}

// ReceiveBatch godoc
// @Summary      Recibir lote de compra
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.ReceiveBatchRequest  true  "product_id, quantity (paquetes), cost_price"
// @Success      201   {object}  dto.BatchResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Router       /api/inventory/batches [post]
func (h *InventoryHandler) ReceiveBatch(c *fiber.Ctx) error {
	var in dto.ReceiveBatchRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.ProductID == "" || in.Quantity <= 0 {
		return badRequest(c, "VALIDATION", "product_id y quantity (> 0) son requeridos")
	}
	input := inventory.ReceiveInput{
		ProductID:       in.ProductID,
		Quantity:        in.Quantity,
		CostPrice:       in.CostPrice,
		SellingPrice:    in.SellingPrice,
		SourceReference: in.SourceReference,
	}
	if in.PurchaseDate != nil {
		input.PurchaseDate = *in.PurchaseDate
	}
	batch, err := h.engine.Receive(c.UserContext(), input)
	if err != nil {
		return writeError(c, err)
	}
	return c.Status(fiber.StatusCreated).JSON(usecase.ToBatchResponse(batch))
}

// Allocate godoc
// @Summary      Salida directa de stock (FIFO)
// @Tags         inventory
// @Security     Bearer
// @Accept       json
// @Produce      json
// @Param        body  body  dto.AllocateRequest  true  "product_id, quantity, unit_mode (PAQUETE|UNIDAD)"
// @Success      201   {object}  dto.AllocationResponse
// @Failure      400   {object}  dto.ErrorResponse
// @Failure      404   {object}  dto.ErrorResponse
// @Failure      409   {object}  dto.InsufficientStockResponse
// @Router       /api/inventory/allocations [post]
func (h *InventoryHandler) Allocate(c *fiber.Ctx) error {
	var in dto.AllocateRequest
	if err := c.BodyParser(&in); err != nil {
		return badRequest(c, "INVALID_BODY", "cuerpo inválido")
	}
	if in.ProductID == "" || in.Quantity <= 0 {
		return badRequest(c, "VALIDATION", "product_id y quantity (> 0) son requeridos")
	}
	res, err := h.engine.Allocate(c.UserContext(), inventory.AllocateInput{
		ProductID: in.ProductID,
		Quantity:  in.Quantity,
		UnitMode:  in.UnitMode,
		UnitPrice: in.UnitPrice,
		Reference: in.Reference,
	})
	if err != nil {
		return writeError(c, err)
	}
	allocs := make([]dto.BatchAllocationDTO, 0, len(res.Allocations))
	for _, a := range res.Allocations {
		allocs = append(allocs, dto.BatchAllocationDTO{BatchID: a.BatchID, Packages: a.Packages, Units: a.Units})
	}
	out := dto.AllocationResponse{
		ProductID:        res.ProductID,
		UnitMode:         res.UnitMode,
		Quantity:         res.Quantity,
		UnitsSold:        res.UnitsSold,
		PackagesDeducted: res.PackagesDeducted,
		Cost:             res.Cost,
		Allocations:      allocs,
	}
	if res.Movement != nil {
		out.MovementID = res.Movement.ID
	}
	return c.Status(fiber.StatusCreated).JSON(out)
}

// ListMovements godoc
// @Summary      Kardex paginado (más recientes primero)
// @Tags         inventory
// @Security     Bearer
// @Produce      json
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        from        query  string  false  "Desde (YYYY-MM-DD o RFC3339)"
// @Param        to          query  string  false  "Hasta (YYYY-MM-DD o RFC3339)"
// @Param        limit       query  int     false  "Tamaño de página" default(100)
// @Param        after       query  string  false  "Cursor devuelto en next"
// @Success      200  {object}  dto.MovementListResponse
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements [get]
func (h *InventoryHandler) ListMovements(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	filter.Limit = c.QueryInt("limit", 0)
	if after := c.Query("after"); after != "" {
		cur, err := decodeCursor(after)
		if err != nil {
			return badRequest(c, "INVALID_CURSOR", "cursor inválido")
		}
		filter.After = cur
	}
	items, next, err := h.ledger.Page(c.UserContext(), filter)
	if err != nil {
		return writeError(c, err)
	}
	out := dto.MovementListResponse{Items: make([]dto.MovementResponse, 0, len(items))}
	for _, m := range items {
		out.Items = append(out.Items, toMovementResponse(m))
	}
	if next != nil {
		out.Next = encodeCursor(next)
	}
	return c.JSON(out)
}

// KardexPDF godoc
// @Summary      Kardex del producto en PDF
// @Tags         inventory
// @Security     Bearer
// @Produce      application/pdf
// @Param        product_id  path   string  true   "ID del producto"
// @Param        from        query  string  false  "Desde"
// @Param        to          query  string  false  "Hasta"
// @Success      200  {file}    binary
// @Failure      404  {object}  dto.ErrorResponse
// @Router       /api/inventory/kardex/{product_id}.pdf [get]
func (h *InventoryHandler) KardexPDF(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	pdf, filename, err := h.reports.KardexPDF(c.UserContext(), c.Params("product_id"), filter.From, filter.To)
	if err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, "application/pdf")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`inline; filename="%s"`, filename))
	return c.Send(pdf)
}

// ExportMovements godoc
// @Summary      Exportar kardex a Excel
// @Tags         inventory
// @Security     Bearer
// @Produce      application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param        product_id  query  string  false  "Filtrar por producto"
// @Param        from        query  string  false  "Desde"
// @Param        to          query  string  false  "Hasta"
// @Success      200  {file}    binary
// @Failure      400  {object}  dto.ErrorResponse
// @Router       /api/inventory/movements/export.xlsx [get]
func (h *InventoryHandler) ExportMovements(c *fiber.Ctx) error {
	filter, err := movementFilter(c)
	if err != nil {
		return badRequest(c, "VALIDATION", err.Error())
	}
	var buf bytes.Buffer
	if err := h.reports.ExportMovements(c.UserContext(), &buf, filter); err != nil {
		return writeError(c, err)
	}
	c.Set(fiber.HeaderContentType, xlsxContentType)
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="kardex.xlsx"`)
	return c.Send(buf.Bytes())
}

// Import godoc
// @Summary      Importar lotes de compra desde XML o Excel
// @Tags         inventory
// @Security     Bearer
// @Accept       multipart/form-data
// @Produce      json
// @Param        file  formData  file  true  "Archivo .xml o .xlsx"
// @Success      200   {object}  inventory.ImportReport
// @Failure      400   {object}  dto.ErrorResponse
// @Router       /api/inventory/import [post]
func (h *InventoryHandler) Import(c *fiber.Ctx) error {
	fh, err := c.FormFile("file")
	if err != nil {
		return badRequest(c, "MISSING_FILE", "campo file requerido")
	}
	f, err := fh.Open()
	if err != nil {
		return badRequest(c, "INVALID_FILE", "no se pudo leer el archivo")
	}
	defer f.Close()
	rows, err := h.parse(fh.Filename, f)
	if err != nil {
		return badRequest(c, "INVALID_FILE", err.Error())
	}
	report, err := h.importer.Import(c.UserContext(), fh.Filename, rows)
	if err != nil {
		return badRequest(c, "INVALID_FILE", err.Error())
	}
	return c.JSON(report)
}

func movementFilter(c *fiber.Ctx) (repository.MovementFilter, error) {
	f := repository.MovementFilter{ProductID: c.Query("product_id")}
	var err error
	if f.From, err = parseTimeQuery(c.Query("from"), false); err != nil {
		return f, fmt.Errorf("from inválido: %w", err)
	}
	if f.To, err = parseTimeQuery(c.Query("to"), true); err != nil {
		return f, fmt.Errorf("to inválido: %w", err)
	}
	return f, nil
}

// parseTimeQuery acepta YYYY-MM-DD o RFC3339. Con endOfDay, una fecha sola cubre el día completo.
func parseTimeQuery(s string, endOfDay bool) (*time.Time, error) {
	if s == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return &t, nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return nil, err
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

// encodeCursor serializa el cursor como base64 de "<unix nanos>|<id>".
func encodeCursor(c *repository.MovementCursor) string {
	raw := strconv.FormatInt(c.CreatedAt.UnixNano(), 10) + "|" + c.ID
	return base64.RawURLEncoding.EncodeToString([]byte(raw))
}

func decodeCursor(s string) (*repository.MovementCursor, error) {
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return nil, err
	}
	nanos, id, ok := strings.Cut(string(raw), "|")
	if !ok || id == "" {
		return nil, fmt.Errorf("cursor sin id")
	}
	n, err := strconv.ParseInt(nanos, 10, 64)
	if err != nil {
		return nil, err
	}
	return &repository.MovementCursor{CreatedAt: time.Unix(0, n).UTC(), ID: id}, nil
}

func toMovementResponse(m *entity.Movement) dto.MovementResponse {
	return dto.MovementResponse{
		ID:        m.ID,
		ProductID: m.ProductID,
		Direction: m.Direction,
		Kind:      m.Kind,
		UnitMode:  m.UnitMode,
		Quantity:  m.Quantity,
		Packages:  m.Packages,
		UnitPrice: m.UnitPrice,
		Total:     m.Total,
		Reference: m.Reference,
		OrderID:   m.OrderID,
		CreatedAt: m.CreatedAt,
	}
}
