package dto

const (
	defaultPageLimit = 20
	maxPageLimit     = 100
)

// PageRequest paginación por offset para catálogos y cuentas.
// El kardex no la usa: pagina por cursor (ver MovementListResponse).
type PageRequest struct {
	Limit  int `query:"limit"`
	Offset int `query:"offset"`
}

// NewPageRequest construye una página ya normalizada.
func NewPageRequest(limit, offset int) PageRequest {
	p := PageRequest{Limit: limit, Offset: offset}
	p.DefaultPage()
	return p
}

// DefaultPage aplica el límite por defecto, acota a maxPageLimit y evita offsets negativos.
func (p *PageRequest) DefaultPage() {
	if p.Limit <= 0 {
		p.Limit = defaultPageLimit
	}
	p.Limit = min(p.Limit, maxPageLimit)
	p.Offset = max(p.Offset, 0)
}

// PageResponse metadatos de página en respuestas.
type PageResponse struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
}

// ErrorResponse cuerpo de error HTTP. Code es estable (p. ej. PRODUCT_NOT_FOUND); Message es para humanos.
type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
