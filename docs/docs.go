// Package docs registers the Swagger spec served at /swagger.
// Regenerate with: swag init -g cmd/tracker/main.go -o docs
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
        "/healthz": {
            "get": {"tags": ["health"], "summary": "Health check", "responses": {"200": {"description": "OK"}}}
        },
        "/readyz": {
            "get": {"tags": ["health"], "summary": "Readiness check", "responses": {"200": {"description": "OK"}}}
        },
        "/api/trending-categories": {
            "get": {"tags": ["trending"], "summary": "Cached trending categories", "responses": {"200": {"description": "OK"}}}
        },
        "/api/trending-categories/refresh": {
            "post": {"tags": ["trending"], "summary": "Recompute trending categories now", "responses": {"200": {"description": "OK"}}}
        },
        "/api/events": {
            "get": {"tags": ["markets"], "summary": "List upstream events, optionally by tag", "responses": {"200": {"description": "OK"}}}
        },
        "/api/market/{slug}": {
            "get": {"tags": ["markets"], "summary": "Upstream market details", "responses": {"200": {"description": "OK"}}}
        },
        "/api/tracked-markets": {
            "get": {"tags": ["markets"], "summary": "List tracked markets", "responses": {"200": {"description": "OK"}}},
            "post": {"tags": ["markets"], "summary": "Start tracking a market", "responses": {"200": {"description": "OK"}}}
        },
        "/api/tracked-markets/{id}": {
            "delete": {"tags": ["markets"], "summary": "Stop tracking a market", "responses": {"200": {"description": "OK"}}}
        },
        "/api/markets/{id}/snapshots": {
            "get": {"tags": ["snapshots"], "summary": "Snapshot history for a market", "responses": {"200": {"description": "OK"}}}
        },
        "/api/snapshots/refresh": {
            "post": {"tags": ["snapshots"], "summary": "Manually refresh snapshots and run shift detection", "responses": {"200": {"description": "OK"}}}
        },
        "/api/alerts": {
            "get": {"tags": ["alerts"], "summary": "List alerts, active by default", "responses": {"200": {"description": "OK"}}}
        },
        "/api/alerts/ack/{id}": {
            "post": {"tags": ["alerts"], "summary": "Acknowledge an alert", "responses": {"200": {"description": "OK"}}}
        },
        "/api/markets/{id}/shifts": {
            "get": {"tags": ["alerts"], "summary": "All shifts for one market, strongest impact first", "responses": {"200": {"description": "OK"}}}
        }
    }
}`

var SwaggerInfo = &swag.Spec{
	Version:          "0.1.0",
	Host:             "localhost:8080",
	BasePath:         "/",
	Schemes:          []string{"http"},
	Title:            "Polytracker API",
	Description:      "Prediction-market probability shift tracking and alerting.",
	InfoInstanceName: "swagger",
	SwaggerTemplate:  docTemplate,
}

func init() {
	swag.Register(SwaggerInfo.InstanceName(), SwaggerInfo)
}
