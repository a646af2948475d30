// Package catalog declara los esquemas de todos los recursos expuestos por la API.
package catalog

import "github.com/jhoicas/backoffice-api/internal/domain/query"

// Nombres de recursos genéricos.
const (
	Products              = "products"
	Categories            = "categories"
	Properties            = "properties"
	Currencies            = "currencies"
	Units                 = "units"
	Languages             = "languages"
	Warehouses            = "warehouses"
	Clients               = "clients"
	Roles                 = "roles"
	CashRegisters         = "cashregisters"
	Expenses              = "expenses"
	MoneyTransactions     = "moneytransactions"
	Orders                = "orders"
	OrderPayments         = "orderpayments"
	WarehouseTransactions = "warehousetransactions"
)

// Recursos con esquema propio (no viven en la tabla genérica).
const (
	Users       = "users"
	Barcodes    = "barcodes"
	Inventories = "inventories"
)

// Campos base de todo registro genérico.
const (
	FieldID        = "id"
	FieldNames     = "names"
	FieldPriority  = "priority"
	FieldActive    = "active"
	FieldCreatedAt = "createdAt"
	FieldUpdatedAt = "updatedAt"
)

func base() []query.Field {
	return []query.Field{
		{Name: FieldID, Kind: query.KindString, Column: "id::text"},
		{Name: FieldNames, Kind: query.KindLanguage, Column: "names", Sortable: true, Editable: true, Required: true},
		{Name: FieldPriority, Kind: query.KindNumber, Column: "priority", Sortable: true, Editable: true},
		{Name: FieldActive, Kind: query.KindBool, Column: "active", Sortable: true, Editable: true},
		{Name: FieldCreatedAt, Kind: query.KindDate, Column: "created_at", Sortable: true},
		{Name: FieldUpdatedAt, Kind: query.KindDate, Column: "updated_at", Sortable: true},
	}
}

func attr(name string, kind query.Kind) query.Field {
	return query.Field{Name: name, Kind: kind, Sortable: kind != query.KindStringList, Editable: true}
}

func substring(name string) query.Field {
	f := attr(name, query.KindString)
	f.Match = query.MatchSubstring
	return f
}

func ref(name, target string) query.Field {
	f := attr(name, query.KindString)
	f.Ref = target
	return f
}

func required(f query.Field) query.Field {
	f.Required = true
	return f
}

func resource(name string, batch bool, ext ...query.Field) *query.Schema {
	return query.NewSchema(name, batch, append(base(), ext...)...)
}

var registry = map[string]*query.Schema{
	Products: resource(Products, true,
		substring("code"),
		ref("category", Categories),
		attr("children", query.KindStringList),
		attr("images", query.KindStringList),
		attr("price", query.KindNumber),
	),
	Categories: resource(Categories, true,
		ref("parent", Categories),
	),
	Properties: resource(Properties, false,
		attr("code", query.KindString),
		ref("unit", Units),
	),
	Currencies: resource(Currencies, true,
		required(attr("code", query.KindString)),
		attr("symbol", query.KindString),
		attr("rate", query.KindNumber),
	),
	Units:     resource(Units, true, required(attr("code", query.KindString))),
	Languages: resource(Languages, true, required(attr("code", query.KindString))),
	Warehouses: resource(Warehouses, false,
		substring("address"),
	),
	Clients: resource(Clients, false,
		substring("email"),
		substring("phone"),
	),
	Roles: resource(Roles, false,
		required(attr("code", query.KindString)),
		attr("permissions", query.KindStringList),
	),
	CashRegisters: resource(CashRegisters, false,
		ref("currency", Currencies),
		attr("balance", query.KindNumber),
	),
	Expenses: resource(Expenses, false,
		ref("cashregister", CashRegisters),
		required(attr("amount", query.KindNumber)),
		attr("date", query.KindDate),
	),
	MoneyTransactions: resource(MoneyTransactions, false,
		ref("from", CashRegisters),
		ref("to", CashRegisters),
		required(attr("amount", query.KindNumber)),
		attr("date", query.KindDate),
	),
	Orders: resource(Orders, false,
		attr("number", query.KindString),
		ref("client", Clients),
		attr("status", query.KindString),
		attr("total", query.KindNumber),
	),
	OrderPayments: resource(OrderPayments, false,
		ref("order", Orders),
		required(attr("amount", query.KindNumber)),
		attr("date", query.KindDate),
	),
	WarehouseTransactions: resource(WarehouseTransactions, false,
		ref("warehouse", Warehouses),
		attr("number", query.KindString),
	),
}

// Lookup devuelve el esquema del recurso genérico.
func Lookup(name string) (*query.Schema, bool) {
	s, ok := registry[name]
	return s, ok
}

// Referrers devuelve, por recurso, los campos que apuntan a target.
func Referrers(target string) map[string][]query.Field {
	out := map[string][]query.Field{}
	for name, s := range registry {
		if fields := s.Refs(target); len(fields) > 0 {
			out[name] = fields
		}
	}
	return out
}

// UserSchema campos listables de usuarios.
var UserSchema = query.NewSchema(Users, false,
	query.Field{Name: "id", Kind: query.KindString, Column: "id::text"},
	query.Field{Name: "login", Kind: query.KindString, Match: query.MatchSubstring, Column: "login", Sortable: true},
	query.Field{Name: "name", Kind: query.KindString, Match: query.MatchSubstring, Column: "name", Sortable: true},
	query.Field{Name: "roleId", Kind: query.KindString, Column: "role_id::text"},
	query.Field{Name: "status", Kind: query.KindString, Column: "status", Sortable: true},
	query.Field{Name: "createdAt", Kind: query.KindDate, Column: "created_at", Sortable: true},
)

// BarcodeSchema campos listables de códigos de barras.
var BarcodeSchema = query.NewSchema(Barcodes, false,
	query.Field{Name: "id", Kind: query.KindString, Column: "id::text"},
	query.Field{Name: "code", Kind: query.KindString, Match: query.MatchSubstring, Column: "code", Sortable: true},
	query.Field{Name: "createdAt", Kind: query.KindDate, Column: "created_at", Sortable: true},
)

// InventorySchema campos listables de inventarios.
var InventorySchema = query.NewSchema(Inventories, false,
	query.Field{Name: "id", Kind: query.KindString, Column: "id::text"},
	query.Field{Name: "kind", Kind: query.KindString, Column: "kind", Sortable: true},
	query.Field{Name: "number", Kind: query.KindString, Match: query.MatchSubstring, Column: "number", Sortable: true},
	query.Field{Name: "warehouseId", Kind: query.KindString, Column: "warehouse_id::text"},
	query.Field{Name: "status", Kind: query.KindString, Column: "status", Sortable: true},
	query.Field{Name: "createdAt", Kind: query.KindDate, Column: "created_at", Sortable: true},
	query.Field{Name: "finalizedAt", Kind: query.KindDate, Column: "finalized_at", Sortable: true},
)
