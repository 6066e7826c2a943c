// Package docs содержит OpenAPI-описание API в формате swaggo/swag.
// Файл ведётся вручную: при изменении аннотаций обработчиков его нужно
// обновить или пересоздать командой swag init -g cmd/healthadmin/main.go.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "contact": {},
        "license": {
            "name": "MIT",
            "url": "https://opensource.org/licenses/MIT"
        },
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Вход в систему",
                "parameters": [
                    {
                        "description": "Учетные данные пользователя",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/login.Request"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректный JSON или пустые поля", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "Неверные учетные данные или неактивный аккаунт", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много запросов", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/verify": {
            "post": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Проверка сессии",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Токен отсутствует, неверен или истёк", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Проверка готовности",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "База данных недоступна", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/patients": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Patients"],
                "summary": "Список пациентов",
                "parameters": [
                    {"type": "integer", "default": 1, "description": "Номер страницы", "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "description": "Размер страницы", "name": "limit", "in": "query"},
                    {"type": "string", "description": "Поиск по имени, фамилии или номеру документа", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Unauthorized", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Patients"],
                "summary": "Регистрация пациента",
                "parameters": [
                    {
                        "description": "Данные карточки",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.PatientInput"}
                    }
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Ошибка валидации или дубликат", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/patients/export": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["text/csv"],
                "tags": ["Patients"],
                "summary": "Выгрузка в CSV",
                "parameters": [
                    {"type": "string", "description": "Поиск по имени, фамилии или номеру документа", "name": "search", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "CSV-файл", "schema": {"type": "string"}}
                }
            }
        },
        "/patients/stats": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Patients"],
                "summary": "Статистика по пациентам",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/patients/{id}": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Patients"],
                "summary": "Карточка пациента",
                "parameters": [
                    {"type": "string", "description": "UUID карточки", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Карточка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Patients"],
                "summary": "Обновление карточки",
                "parameters": [
                    {"type": "string", "description": "UUID карточки", "name": "id", "in": "path", "required": true},
                    {
                        "description": "Изменяемые поля",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/models.PatientInput"}
                    }
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Ошибка валидации или дубликат", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Карточка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            },
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Patients"],
                "summary": "Деактивация карточки",
                "parameters": [
                    {"type": "string", "description": "UUID карточки", "name": "id", "in": "path", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Карточка не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            }
        },
        "models.EmergencyContactInput": {
            "type": "object",
            "required": ["name", "phone", "relationship"],
            "properties": {
                "name": {"type": "string"},
                "phone": {"type": "string"},
                "relationship": {"type": "string"}
            }
        },
        "models.FieldError": {
            "type": "object",
            "properties": {
                "field": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "models.PatientInput": {
            "type": "object",
            "required": ["documentType", "documentNumber", "firstNames", "lastNames", "birthDate", "gender", "phone", "email", "address", "city", "healthProvider", "bloodType"],
            "properties": {
                "documentType": {"type": "string", "enum": ["CC", "TI", "CE", "PA", "RC"]},
                "documentNumber": {"type": "string", "maxLength": 15, "minLength": 5},
                "firstNames": {"type": "string", "maxLength": 50, "minLength": 2},
                "lastNames": {"type": "string", "maxLength": 50, "minLength": 2},
                "birthDate": {"type": "string", "example": "1990-05-01"},
                "gender": {"type": "string", "enum": ["M", "F", "O"]},
                "phone": {"type": "string", "example": "3001234567"},
                "email": {"type": "string"},
                "address": {"type": "string", "maxLength": 100, "minLength": 5},
                "city": {"type": "string"},
                "healthProvider": {"type": "string"},
                "bloodType": {"type": "string", "enum": ["A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-"]},
                "allergies": {"type": "string", "maxLength": 500},
                "emergencyContact": {"$ref": "#/definitions/models.EmergencyContactInput"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "Error"},
                "error": {"type": "string", "example": "invalid request body"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/models.FieldError"}}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "error": {"type": "string"},
                "fields": {"type": "array", "items": {"$ref": "#/definitions/models.FieldError"}},
                "data": {}
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "description": "Type \"Bearer\" followed by a space and JWT token.",
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "HealthAdmin Lite API",
	Description:      "API регистрации и ведения карточек пациентов",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
