// Package docs registers the OpenAPI document served under /swagger/.
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
        "/garden/state": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Returns balances, plots, modifiers and the plant catalog. Creates a starter garden on first use.",
                "produces": ["application/json"],
                "tags": ["garden"],
                "summary": "Get garden state",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.GardenSnapshot"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/garden/harvest": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Verifies the client's computed reward and credits it. A mismatch returns 409 with code cost_mismatch.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["garden"],
                "summary": "Harvest a plot",
                "parameters": [
                    {"type": "string", "description": "Deduplication key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Harvest request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.HarvestRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.HarvestResult"}},
                    "400": {"description": "Invalid plot, not ready or nothing to harvest", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Cost mismatch or duplicate request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/garden/plant": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Verifies the expected cost and plants at the plot.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["garden"],
                "summary": "Plant a seed",
                "parameters": [
                    {"type": "string", "description": "Deduplication key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Plant request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.PlantRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.PlantResult"}},
                    "400": {"description": "Invalid plot, occupied, level too low or insufficient funds", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "409": {"description": "Cost mismatch or duplicate request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "500": {"description": "Internal Server Error", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/garden/cooldown": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Get reward cooldown",
                "parameters": [
                    {"type": "string", "description": "User ID", "name": "user_id", "in": "query", "required": true},
                    {"type": "string", "description": "Reward type", "name": "reward_type", "in": "query", "required": true}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.CooldownState"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/garden/grant": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Atomically checks cooldown and daily quota, then credits the reward. Rejections return 429 with time_until_next_seconds.",
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["rewards"],
                "summary": "Grant ad reward",
                "parameters": [
                    {"type": "string", "description": "Deduplication key", "name": "Idempotency-Key", "in": "header"},
                    {"description": "Grant request", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/domain.GrantRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/domain.GrantResult"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}},
                    "429": {"description": "On cooldown or daily limit reached", "schema": {"$ref": "#/definitions/handler.ErrorResponse"}}
                }
            }
        },
        "/garden/events": {
            "get": {
                "security": [{"ApiKeyAuth": []}],
                "description": "Server-sent event stream of settled economy changes.",
                "produces": ["text/event-stream"],
                "tags": ["garden"],
                "summary": "Stream garden events",
                "parameters": [
                    {"type": "string", "description": "Only events for this user", "name": "user_id", "in": "query"},
                    {"type": "string", "description": "Comma separated event types", "name": "types", "in": "query"}
                ],
                "responses": {
                    "200": {"description": "OK"}
                }
            }
        },
        "/admin/garden/upgrade": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Add upgrade",
                "parameters": [
                    {"description": "Upgrade", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.AddUpgradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ValidationErrorResponse"}}
                }
            }
        },
        "/admin/garden/tier": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "consumes": ["application/json"],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Set tier bonus",
                "parameters": [
                    {"description": "Tier", "name": "request", "in": "body", "required": true, "schema": {"$ref": "#/definitions/handler.SetTierRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.SuccessResponse"}},
                    "400": {"description": "Bad Request", "schema": {"$ref": "#/definitions/handler.ValidationErrorResponse"}}
                }
            }
        },
        "/admin/garden/purge": {
            "post": {
                "security": [{"ApiKeyAuth": []}],
                "produces": ["application/json"],
                "tags": ["admin"],
                "summary": "Purge expired records",
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/handler.PurgeResponse"}}
                }
            }
        }
    },
    "definitions": {
        "domain.HarvestRequest": {
            "type": "object",
            "required": ["user_id"],
            "properties": {
                "user_id": {"type": "string", "maxLength": 100},
                "plot_id": {"type": "integer", "minimum": 1, "maximum": 64},
                "computed_harvest_reward": {"type": "integer", "minimum": 0},
                "computed_exp_reward": {"type": "integer", "minimum": 0},
                "computed_growth_seconds": {"type": "integer", "minimum": 1},
                "multiplier_snapshot": {"type": "object"}
            }
        },
        "domain.HarvestResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "final_coins": {"type": "integer"},
                "final_gems": {"type": "integer"},
                "final_experience": {"type": "integer"},
                "final_level": {"type": "integer"},
                "final_harvest_count": {"type": "integer"},
                "gems_awarded": {"type": "integer"},
                "revision": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "domain.PlantRequest": {
            "type": "object",
            "required": ["user_id", "plant_type_id"],
            "properties": {
                "user_id": {"type": "string", "maxLength": 100},
                "plot_id": {"type": "integer", "minimum": 1, "maximum": 64},
                "plant_type_id": {"type": "string", "maxLength": 64},
                "expected_cost": {"type": "integer", "minimum": 0},
                "base_growth_seconds": {"type": "integer", "minimum": 1}
            }
        },
        "domain.PlantResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "planted_at": {"type": "string"},
                "new_coin_balance": {"type": "integer"},
                "revision": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "domain.CooldownState": {
            "type": "object",
            "properties": {
                "reward_type": {"type": "string"},
                "available": {"type": "boolean"},
                "daily_count": {"type": "integer"},
                "max_daily": {"type": "integer"},
                "time_until_next_seconds": {"type": "integer"}
            }
        },
        "domain.GrantRequest": {
            "type": "object",
            "required": ["user_id", "reward_type"],
            "properties": {
                "user_id": {"type": "string", "maxLength": 100},
                "reward_type": {"type": "string", "enum": ["coins", "gems", "growth_boost", "coin_boost"]},
                "reward_amount": {"type": "integer", "minimum": 0, "maximum": 1000000},
                "ad_duration_ms": {"type": "integer", "minimum": 0, "maximum": 600000}
            }
        },
        "domain.GrantResult": {
            "type": "object",
            "properties": {
                "success": {"type": "boolean"},
                "daily_count": {"type": "integer"},
                "max_daily": {"type": "integer"},
                "error": {"type": "string"}
            }
        },
        "domain.GardenSnapshot": {
            "type": "object"
        },
        "handler.ErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "kind": {"type": "string"},
                "reward_type": {"type": "string"},
                "time_until_next_seconds": {"type": "integer"},
                "daily_count": {"type": "integer"},
                "max_daily": {"type": "integer"}
            }
        },
        "handler.ValidationErrorResponse": {
            "type": "object",
            "properties": {
                "error": {"type": "string"},
                "code": {"type": "string"},
                "kind": {"type": "string"},
                "fields": {"type": "object", "additionalProperties": {"type": "string"}}
            }
        },
        "handler.SuccessResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"}
            }
        },
        "handler.AddUpgradeRequest": {
            "type": "object",
            "required": ["user_id", "upgrade_id", "effect_type"],
            "properties": {
                "user_id": {"type": "string"},
                "upgrade_id": {"type": "string"},
                "effect_type": {"type": "string"},
                "effect_value": {"type": "number"}
            }
        },
        "handler.SetTierRequest": {
            "type": "object",
            "required": ["user_id"],
            "properties": {
                "user_id": {"type": "string"},
                "name": {"type": "string"},
                "harvest": {"type": "number"}
            }
        },
        "handler.PurgeResponse": {
            "type": "object",
            "properties": {
                "message": {"type": "string"},
                "boosts_removed": {"type": "integer"},
                "keys_removed": {"type": "integer"}
            }
        }
    },
    "securityDefinitions": {
        "ApiKeyAuth": {
            "type": "apiKey",
            "name": "X-API-Key",
            "in": "header"
        }
    }
}`

// SwaggerInfo holds exported Swagger Info so clients can modify it
var SwaggerInfo = &swag.Spec{
	Version:          "1.0",
	Host:             "",
	BasePath:         "/api/v1",
	Schemes:          []string{},
	Title:            "idlegarden authority API",
	Description:      "Settles harvests, plantings and ad reward grants for the idle garden economy.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
	LeftDelim:        "{{",
	RightDelim:       "}}",
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
