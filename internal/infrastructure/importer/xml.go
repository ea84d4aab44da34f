package importer

import (
	"fmt"
	"io"
	"strings"

	"github.com/beevik/etree"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"

	"github.com/jhoicas/inventario-lotes/internal/application/inventory"
)

// ParseXML lee un documento <lotes><lote .../></lotes>. Cada campo puede venir como
// atributo o como elemento hijo: sku, fecha, cantidad, costo, precio. Acepta ISO-8859-1.
func ParseXML(r io.Reader) ([]inventory.ImportRow, error) {
	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = func(charset string, input io.Reader) (io.Reader, error) {
		if strings.EqualFold(charset, "ISO-8859-1") || strings.EqualFold(charset, "ISO8859-1") || strings.EqualFold(charset, "latin1") {
			return transform.NewReader(input, charmap.ISO8859_1.NewDecoder()), nil
		}
		return input, nil
	}
	if _, err := doc.ReadFrom(r); err != nil {
		return nil, fmt.Errorf("leer XML: %w", err)
	}
	root := doc.Root()
	if root == nil {
		return nil, fmt.Errorf("leer XML: documento vacío")
	}
	var rows []inventory.ImportRow
	for i, el := range root.SelectElements("lote") {
		row, err := rawRow{
			line:         i + 1,
			sku:          field(el, "sku"),
			date:         field(el, "fecha"),
			quantity:     field(el, "cantidad"),
			costPrice:    field(el, "costo"),
			sellingPrice: field(el, "precio"),
		}.parse()
		if err != nil {
			return nil, err
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("leer XML: no hay elementos <lote>")
	}
	return rows, nil
}

func field(el *etree.Element, name string) string {
	if v := el.SelectAttrValue(name, ""); v != "" {
		return v
	}
	if child := el.SelectElement(name); child != nil {
		return child.Text()
	}
	return ""
}
