// Package docs содержит OpenAPI-описание HTTP API для swag и http-swagger.
package docs

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
        "/auth/login": {
            "post": {
                "description": "Проверяет почту и пароль и выставляет cookie сессии на 1 день или на 30 дней при rememberMe.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Вход пользователя",
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
                    "200": {"description": "Успешный вход, cookie выставлен", "schema": {"$ref": "#/definitions/models.Profile"}},
                    "400": {"description": "Некорректный запрос или ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "401": {"description": "InvalidCredentials", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много попыток", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "description": "Просит клиента удалить cookie сессии. Сам токен остаётся валидным до истечения срока.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Выход пользователя",
                "responses": {
                    "200": {"description": "Cookie сессии удалён", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/auth/register": {
            "post": {
                "description": "Создаёт учётную запись. Почта сравнивается без учёта регистра.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Регистрация пользователя",
                "parameters": [
                    {
                        "description": "Данные регистрации",
                        "name": "request",
                        "in": "body",
                        "required": true,
                        "schema": {"$ref": "#/definitions/register.Request"}
                    }
                ],
                "responses": {
                    "201": {"description": "Учётная запись создана", "schema": {"$ref": "#/definitions/models.Profile"}},
                    "400": {"description": "Некорректный запрос, ошибка валидации или DuplicateEmail", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "429": {"description": "Слишком много запросов", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/user": {
            "get": {
                "description": "Возвращает профиль владельца cookie сессии.",
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Текущий пользователь",
                "responses": {
                    "200": {"description": "Профиль", "schema": {"$ref": "#/definitions/models.Profile"}},
                    "401": {"description": "Unauthenticated", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Учётная запись не найдена", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "500": {"description": "Внутренняя ошибка сервера", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Проверка живости",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        }
    },
    "definitions": {
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "password": {"type": "string", "example": "secret1"},
                "rememberMe": {"type": "boolean", "example": false}
            }
        },
        "models.Profile": {
            "type": "object",
            "properties": {
                "email": {"type": "string", "example": "alice@example.com"},
                "fullName": {"type": "string", "example": "Alice A"},
                "id": {"type": "string", "example": "4f9c2a1e-6f0b-4a51-9d43-2a9e1c7d5b10"}
            }
        },
        "register.Request": {
            "type": "object",
            "required": ["confirmPassword", "email", "password"],
            "properties": {
                "confirmPassword": {"type": "string", "example": "secret1"},
                "email": {"type": "string", "example": "alice@example.com"},
                "fullName": {"type": "string", "maxLength": 100, "example": "Alice A"},
                "password": {"type": "string", "maxLength": 100, "minLength": 6, "example": "secret1"}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string", "example": "InvalidCredentials"},
                "status": {"type": "string", "example": "Error"}
            }
        },
        "response.Response": {
            "type": "object",
            "properties": {
                "data": {},
                "error": {"type": "string"},
                "status": {"type": "string"}
            }
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/",
	Schemes:          []string{},
	Title:            "Cookie Auth API",
	Description:      "Регистрация, вход и сессии на основе cookie.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
