// Package docs регистрирует описание API для Swagger UI на /docs.
// Аннотации обработчиков совпадают с этим описанием, файл можно
// перегенерировать командой swag init -g cmd/tutoring-platform/main.go.
package docs

import "github.com/swaggo/swag"

const docTemplate = `{
    "schemes": {{ marshal .Schemes }},
    "swagger": "2.0",
    "info": {
        "description": "{{escape .Description}}",
        "title": "{{.Title}}",
        "version": "{{.Version}}"
    },
    "host": "{{.Host}}",
    "basePath": "{{.BasePath}}",
    "paths": {
        "/auth/signup": {
            "post": {
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Регистрация ученика",
                "parameters": [
                    {"type": "string", "name": "firstName", "in": "formData", "required": true},
                    {"type": "string", "name": "lastName", "in": "formData", "required": true},
                    {"type": "string", "name": "email", "in": "formData", "required": true},
                    {"type": "string", "name": "password", "in": "formData", "required": true},
                    {"type": "string", "name": "confirmPassword", "in": "formData", "required": true},
                    {"type": "integer", "name": "classOp", "in": "formData", "required": true},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "subjects", "in": "formData", "required": true},
                    {"type": "file", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "201": {"description": "Аккаунт создан", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Некорректная форма", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "409": {"description": "Аккаунт уже существует", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "422": {"description": "Ошибка валидации", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/verify-otp": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Подтверждение регистрации",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/verifyotp.Request"}}],
                "responses": {
                    "200": {"description": "Аккаунт подтверждён", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Неверный или просроченный код", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/login": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Авторизация пользователя",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/login.Request"}}],
                "responses": {
                    "200": {"description": "Успешная авторизация", "schema": {"$ref": "#/definitions/response.Response"}},
                    "401": {"description": "Неверный пароль", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/forgot-password": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Запрос кода сброса пароля",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/forgotpassword.Request"}}],
                "responses": {
                    "200": {"description": "Код отправлен", "schema": {"$ref": "#/definitions/response.Response"}},
                    "404": {"description": "Пользователь не найден", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/verify-password-otp": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Auth"],
                "summary": "Смена пароля по коду",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/resetpassword.Request"}}],
                "responses": {
                    "200": {"description": "Пароль изменён", "schema": {"$ref": "#/definitions/response.Response"}},
                    "400": {"description": "Неверный или просроченный код", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/update-profile": {
            "put": {
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Изменение профиля",
                "parameters": [
                    {"type": "string", "name": "firstName", "in": "formData"},
                    {"type": "string", "name": "lastName", "in": "formData"},
                    {"type": "integer", "name": "classOp", "in": "formData"},
                    {"type": "array", "items": {"type": "string"}, "collectionFormat": "multi", "name": "subjects", "in": "formData"},
                    {"type": "file", "name": "image", "in": "formData"}
                ],
                "responses": {
                    "200": {"description": "Профиль обновлён", "schema": {"$ref": "#/definitions/response.Response"}},
                    "429": {"description": "Слишком много запросов", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/auth/delete-user": {
            "delete": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Profile"],
                "summary": "Удаление аккаунта",
                "responses": {
                    "200": {"description": "Аккаунт удалён", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/feat/upload-video": {
            "post": {
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "Добавление видео",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/upload.Request"}}],
                "responses": {
                    "201": {"description": "Видео добавлено", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/feat/videos": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Videos"],
                "summary": "Список видео",
                "parameters": [
                    {"type": "integer", "default": 1, "name": "page", "in": "query"},
                    {"type": "integer", "default": 10, "name": "size", "in": "query"},
                    {"type": "string", "name": "search", "in": "query"},
                    {"type": "integer", "name": "classOp", "in": "query"},
                    {"type": "string", "name": "subject", "in": "query"},
                    {"enum": ["vidTitle", "createdAt"], "type": "string", "name": "sortBy", "in": "query"},
                    {"enum": ["asc", "desc"], "type": "string", "name": "order", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "Страница видео", "schema": {"$ref": "#/definitions/response.Response"}},
                    "403": {"description": "Подписка не активна", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/feat/stream/{publicId}/{quality}": {
            "get": {
                "produces": ["video/mp4"],
                "tags": ["Videos"],
                "summary": "Поток видео",
                "parameters": [
                    {"type": "string", "name": "publicId", "in": "path", "required": true},
                    {"enum": ["360p", "480p", "720p", "1080p"], "type": "string", "name": "quality", "in": "path", "required": true},
                    {"type": "string", "name": "Range", "in": "header", "required": true}
                ],
                "responses": {
                    "206": {"description": "Часть видео"},
                    "400": {"description": "Нет диапазона или он некорректен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "404": {"description": "Видео не найдено", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "416": {"description": "Диапазон вне видео", "schema": {"$ref": "#/definitions/response.ErrorResponse"}},
                    "502": {"description": "Хостинг недоступен", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/feat/getkey": {
            "get": {
                "security": [{"BearerAuth": []}],
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Публичный ключ шлюза",
                "responses": {
                    "200": {"description": "Ключ", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/feat/buy-sub": {
            "post": {
                "security": [{"BearerAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Заказ на оплату подписки",
                "parameters": [{"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/order.Request"}}],
                "responses": {
                    "200": {"description": "Заказ создан", "schema": {"$ref": "#/definitions/response.Response"}}
                }
            }
        },
        "/feat/paymentverification": {
            "post": {
                "consumes": ["application/json", "application/x-www-form-urlencoded"],
                "produces": ["application/json"],
                "tags": ["Payments"],
                "summary": "Подтверждение оплаты",
                "parameters": [
                    {"type": "string", "name": "userId", "in": "query", "required": true},
                    {"type": "number", "name": "subAmount", "in": "query", "required": true},
                    {"type": "integer", "name": "duration", "in": "query", "required": true},
                    {"name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/verify.Request"}}
                ],
                "responses": {
                    "302": {"description": "Перенаправление на страницу успешной оплаты"},
                    "400": {"description": "Неверная подпись или параметры", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        },
        "/health": {
            "get": {
                "produces": ["application/json"],
                "tags": ["Health"],
                "summary": "Проверка доступности",
                "responses": {
                    "200": {"description": "Сервис доступен", "schema": {"$ref": "#/definitions/response.Response"}},
                    "503": {"description": "База недоступна", "schema": {"$ref": "#/definitions/response.ErrorResponse"}}
                }
            }
        }
    },
    "definitions": {
        "response.Response": {
            "type": "object",
            "properties": {
                "status": {"type": "string"},
                "message": {"type": "string"},
                "error": {"type": "string"},
                "data": {}
            }
        },
        "response.ErrorResponse": {
            "type": "object",
            "properties": {
                "status": {"type": "string", "example": "Error"},
                "error": {"type": "string", "example": "invalid request body"}
            }
        },
        "login.Request": {
            "type": "object",
            "required": ["email", "password"],
            "properties": {"email": {"type": "string"}, "password": {"type": "string"}}
        },
        "verifyotp.Request": {
            "type": "object",
            "required": ["email", "otp"],
            "properties": {"email": {"type": "string"}, "otp": {"type": "string"}}
        },
        "forgotpassword.Request": {
            "type": "object",
            "required": ["email"],
            "properties": {"email": {"type": "string"}}
        },
        "resetpassword.Request": {
            "type": "object",
            "required": ["email", "otp", "newPassword", "confirmNewPassword"],
            "properties": {
                "email": {"type": "string"},
                "otp": {"type": "string"},
                "newPassword": {"type": "string"},
                "confirmNewPassword": {"type": "string"}
            }
        },
        "upload.Request": {
            "type": "object",
            "required": ["vidTitle", "classOp", "subject", "publicId"],
            "properties": {
                "vidTitle": {"type": "string"},
                "classOp": {"type": "integer"},
                "subject": {"type": "string"},
                "publicId": {"type": "string"}
            }
        },
        "order.Request": {
            "type": "object",
            "required": ["amount", "duration"],
            "properties": {"amount": {"type": "number"}, "duration": {"type": "integer"}}
        },
        "verify.Request": {
            "type": "object",
            "required": ["razorpay_order_id", "razorpay_payment_id", "razorpay_signature"],
            "properties": {
                "razorpay_order_id": {"type": "string"},
                "razorpay_payment_id": {"type": "string"},
                "razorpay_signature": {"type": "string"}
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

// SwaggerInfo метаданные описания API.
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "localhost:8080",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "Tutoring Platform API",
	Description:      "API платформы видеоуроков: регистрация учеников, каталог и поток видео, оплата подписки",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
