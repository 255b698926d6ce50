// Package apidocs registra la definición OpenAPI que sirve /swagger/*.
// Se mantiene a mano a partir de las anotaciones godoc de los handlers.
package apidocs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/owners": {
            "get": {
                "produces": ["application/json"],
                "tags": ["owners"],
                "summary": "Listar dueños",
                "parameters": [
                    {"type": "string", "description": "Texto a buscar en nombre o email", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/owner"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["owners"],
                "summary": "Crear dueño",
                "parameters": [
                    {"description": "Datos del dueño", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ownerRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/owner"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}},
                    "409": {"description": "email en uso", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/owners/{ownerID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["owners"],
                "summary": "Obtener dueño con sus mascotas",
                "parameters": [
                    {"type": "string", "description": "ID del dueño", "name": "ownerID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/owner"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "put": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["owners"],
                "summary": "Reemplazar datos del dueño",
                "parameters": [
                    {"type": "string", "description": "ID del dueño", "name": "ownerID", "in": "path", "required": true},
                    {"description": "Registro completo", "name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ownerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/owner"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}},
                    "409": {"description": "email en uso", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "delete": {
                "tags": ["owners"],
                "summary": "Borrar dueño",
                "description": "Borra también sus mascotas y las citas de esas mascotas.",
                "parameters": [
                    {"type": "string", "description": "ID del dueño", "name": "ownerID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/pets": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Listar mascotas",
                "parameters": [
                    {"type": "string", "name": "owner_id", "in": "query"},
                    {"type": "string", "name": "species", "in": "query"},
                    {"type": "string", "name": "doc_key", "in": "query"},
                    {"type": "string", "name": "doc_value", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/pet"}}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Registrar mascota",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/petRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/pet"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}},
                    "422": {"description": "owner inexistente", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/pets/{petID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Obtener mascota con su historial de citas",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pet"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["pets"],
                "summary": "Actualizar mascota (parcial)",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/petRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/pet"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "delete": {
                "tags": ["pets"],
                "summary": "Borrar mascota",
                "parameters": [
                    {"type": "string", "name": "petID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/appointments": {
            "get": {
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Listar citas",
                "parameters": [
                    {"type": "string", "name": "pet_id", "in": "query"},
                    {"type": "string", "name": "status", "in": "query", "enum": ["scheduled", "completed", "cancelled", "no_show"]},
                    {"type": "string", "name": "doc_key", "in": "query"},
                    {"type": "string", "name": "doc_value", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/agendaEntry"}}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Agendar cita",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/appointmentRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/appointment"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/error"}},
                    "422": {"description": "mascota inexistente", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/appointments/today": {
            "get": {
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Citas de hoy",
                "responses": {
                    "200": {"description": "OK", "schema": {"type": "array", "items": {"$ref": "#/definitions/agendaEntry"}}}
                }
            }
        },
        "/appointments/{appointmentID}": {
            "get": {
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Obtener cita",
                "parameters": [
                    {"type": "string", "name": "appointmentID", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/appointment"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}
                }
            },
            "delete": {
                "tags": ["appointments"],
                "summary": "Borrar cita",
                "parameters": [
                    {"type": "string", "name": "appointmentID", "in": "path", "required": true}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/appointments/{appointmentID}/status": {
            "patch": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["appointments"],
                "summary": "Cambiar estado de la cita",
                "parameters": [
                    {"type": "string", "name": "appointmentID", "in": "path", "required": true},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/statusRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/appointment"}},
                    "404": {"description": "Not Found", "schema": {"$ref": "#/definitions/error"}},
                    "409": {"description": "transición inválida", "schema": {"$ref": "#/definitions/error"}}
                }
            }
        },
        "/stats": {
            "get": {
                "produces": ["application/json"],
                "tags": ["stats"],
                "summary": "Números del dashboard",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/stats"}}
                }
            }
        }
    },
    "definitions": {
        "error": {
            "type": "object",
            "properties": {"error": {"type": "string"}}
        },
        "ownerRequest": {
            "type": "object",
            "properties": {
                "name": {"type": "string", "example": "Ana Pérez"},
                "phone": {"type": "string", "example": "555-0101"},
                "email": {"type": "string", "example": "ana@example.com"},
                "address": {"type": "string"},
                "contact": {"type": "object"}
            }
        },
        "owner": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "email": {"type": "string"},
                "address": {"type": "string"},
                "contact": {"type": "object"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "petRequest": {
            "type": "object",
            "properties": {
                "owner_id": {"type": "string"},
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "birth_date": {"type": "string", "format": "date"},
                "weight_kg": {"type": "number"},
                "medical": {"type": "object"}
            }
        },
        "pet": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "owner_id": {"type": "string"},
                "name": {"type": "string"},
                "species": {"type": "string"},
                "breed": {"type": "string"},
                "birth_date": {"type": "string", "format": "date"},
                "weight_kg": {"type": "number"},
                "medical": {"type": "object"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "appointmentRequest": {
            "type": "object",
            "properties": {
                "pet_id": {"type": "string"},
                "scheduled_at": {"type": "string", "format": "date-time"},
                "reason": {"type": "string"},
                "notes": {"type": "string"},
                "consultation": {"type": "object"}
            }
        },
        "statusRequest": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "enum": ["completed", "cancelled", "no_show"]}
            }
        },
        "appointment": {
            "type": "object",
            "properties": {
                "id": {"type": "string"},
                "pet_id": {"type": "string"},
                "scheduled_at": {"type": "string", "format": "date-time"},
                "status": {"type": "string"},
                "reason": {"type": "string"},
                "notes": {"type": "string"},
                "consultation": {"type": "object"},
                "created_at": {"type": "string", "format": "date-time"},
                "updated_at": {"type": "string", "format": "date-time"}
            }
        },
        "agendaEntry": {
            "allOf": [
                {"$ref": "#/definitions/appointment"},
                {
                    "type": "object",
                    "properties": {
                        "pet_name": {"type": "string"},
                        "pet_species": {"type": "string"},
                        "owner_id": {"type": "string"},
                        "owner_name": {"type": "string"},
                        "owner_phone": {"type": "string"}
                    }
                }
            ]
        },
        "stats": {
            "type": "object",
            "properties": {
                "total_owners": {"type": "integer"},
                "total_pets": {"type": "integer"},
                "total_appointments": {"type": "integer"},
                "appointments_by_status": {"type": "object", "additionalProperties": {"type": "integer"}},
                "appointments_today": {"type": "integer"},
                "appointments_upcoming": {"type": "integer"},
                "pets_by_species": {
                    "type": "array",
                    "items": {
                        "type": "object",
                        "properties": {"species": {"type": "string"}, "total": {"type": "integer"}}
                    }
                }
            }
        }
    }
}`

// SwaggerInfo se puede ajustar desde main (host, basePath) antes de servir.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Vet Clinic API",
	Description:      "Dueños, mascotas, citas y dashboard de una clínica veterinaria.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
