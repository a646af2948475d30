// Package barcode normaliza códigos leídos por escáner para que una misma etiqueta
// siempre resuelva al mismo registro: EAN-8/UPC-A/EAN-13 se rellenan a GTIN-14 y las
// cadenas GS1 con AI(01) se reducen a su GTIN.
package barcode

import "strings"

// gs1Separator FNC1 que algunos escáneres emiten entre AIs de longitud variable.
const gs1Separator = "\x1d"

// Normalize devuelve la forma canónica del código. Códigos no numéricos se devuelven sin espacios.
func Normalize(code string) string {
	code = strings.TrimSpace(code)
	flat := strings.NewReplacer("(", "", ")", "", gs1Separator, "").Replace(code)
	if len(flat) >= 16 && strings.HasPrefix(flat, "01") && isDigits(flat[2:16]) {
		// AI(01): el GTIN son los 14 dígitos fijos siguientes; el resto (lote, vencimiento) se descarta
		return flat[2:16]
	}
	if !isDigits(flat) {
		return code
	}
	switch n := len(flat); {
	case n >= 8 && n <= 13:
		return strings.Repeat("0", 14-n) + flat
	case n == 14:
		return flat
	}
	return flat
}

// GTIN informa si el código normalizado es un GTIN-14 con dígito verificador correcto.
func GTIN(code string) bool {
	if len(code) != 14 || !isDigits(code) {
		return false
	}
	sum := 0
	for i := 0; i < 13; i++ {
		d := int(code[i] - '0')
		if i%2 == 0 {
			d *= 3
		}
		sum += d
	}
	return (10-sum%10)%10 == int(code[13]-'0')
}

// Valid informa si el código normalizado es aceptable: los de 14 dígitos deben ser GTIN válidos.
func Valid(code string) bool {
	if len(code) == 14 && isDigits(code) {
		return GTIN(code)
	}
	return code != ""
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
