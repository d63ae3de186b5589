package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Aethra Publishing API",
        "description": "Manuscript ingestion and publication hierarchy service",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http",
        "https"
    ],
    "tags": [
        {"name": "Journals", "description": "Journal registry"},
        {"name": "Volumes", "description": "Volumes within a journal"},
        {"name": "Issues", "description": "Issues within a volume"},
        {"name": "Articles", "description": "Article metadata and placement"},
        {"name": "Files", "description": "Artifact slots attached to articles"},
        {"name": "Figures", "description": "Figure registry and image delivery"},
        {"name": "Ingestion", "description": "Manuscript parsing pipeline"},
        {"name": "Reading", "description": "Composed public reading views"},
        {"name": "Exports", "description": "Citation and issue exports"}
    ],
    "paths": {
        "/journals": {
            "get": {
                "tags": ["Journals"],
                "summary": "List journals",
                "parameters": [
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"},
                    {"name": "sort", "in": "query", "type": "string"},
                    {"name": "order", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Journals"],
                "summary": "Create journal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateJournalRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/journals/{id}": {
            "get": {
                "tags": ["Journals"],
                "summary": "Get journal",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Not found"}
                }
            },
            "put": {
                "tags": ["Journals"],
                "summary": "Update journal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/UpdateJournalRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Journals"],
                "summary": "Delete journal",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"},
                    "409": {"description": "Journal still carries articles"}
                }
            }
        },
        "/journals/{id}/volumes": {
            "get": {
                "tags": ["Volumes"],
                "summary": "List volumes of a journal",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Volumes"],
                "summary": "Create volume",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateVolumeRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/volumes/{id}/issues": {
            "get": {
                "tags": ["Issues"],
                "summary": "List issues of a volume",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Issues"],
                "summary": "Create issue",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateIssueRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/articles": {
            "get": {
                "tags": ["Articles"],
                "summary": "List articles",
                "parameters": [
                    {"name": "journalId", "in": "query", "type": "string"},
                    {"name": "volumeId", "in": "query", "type": "string"},
                    {"name": "issueId", "in": "query", "type": "string"},
                    {"name": "status", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"},
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "post": {
                "tags": ["Articles"],
                "summary": "Create article",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateArticleRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/articles/{id}/placement": {
            "put": {
                "tags": ["Articles"],
                "summary": "Move article to a new placement",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PlacementRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Placement violates the hierarchy"},
                    "409": {"description": "Slug already used in the target journal"}
                }
            }
        },
        "/articles/{id}/files/{kind}": {
            "get": {
                "tags": ["Files"],
                "summary": "Download a stored file",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "kind", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "403": {"description": "File kind is not publicly downloadable"}
                }
            },
            "put": {
                "tags": ["Files"],
                "summary": "Upload into a file slot",
                "security": [{"BearerAuth": []}],
                "consumes": ["multipart/form-data"],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "kind", "in": "path", "required": true, "type": "string"},
                    {"name": "file", "in": "formData", "required": true, "type": "file"}
                ],
                "responses": {
                    "201": {"description": "Stored", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "delete": {
                "tags": ["Files"],
                "summary": "Delete a file slot",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "kind", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "Deleted"}
                }
            }
        },
        "/articles/{id}/parsing": {
            "get": {
                "tags": ["Ingestion"],
                "summary": "Manuscript parsing status",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/articles/{id}/reparse": {
            "post": {
                "tags": ["Ingestion"],
                "summary": "Queue a re-parse of the stored manuscript",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "202": {"description": "Queued", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reading/{journalSlug}/{articleSlug}": {
            "get": {
                "tags": ["Reading"],
                "summary": "Composed reading view of a published article",
                "parameters": [
                    {"name": "journalSlug", "in": "path", "required": true, "type": "string"},
                    {"name": "articleSlug", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "404": {"description": "Article not published or unknown"}
                }
            }
        },
        "/articles/{id}/citation": {
            "get": {
                "tags": ["Exports"],
                "summary": "Citation in RIS, BibTeX or EndNote format",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "format", "in": "query", "type": "string", "enum": ["ris", "bib", "endnote"]}
                ],
                "responses": {
                    "200": {"description": "Citation file"}
                }
            }
        },
        "/issues/{id}/toc": {
            "get": {
                "tags": ["Exports"],
                "summary": "Issue table of contents as PDF",
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "PDF document"}
                }
            }
        }
    },
    "securityDefinitions": {
        "BearerAuth": {
            "type": "apiKey",
            "name": "Authorization",
            "in": "header"
        }
    },
    "definitions": {
        "CreateJournalRequest": {
            "type": "object",
            "required": ["slug", "title"],
            "properties": {
                "slug": {"type": "string"},
                "title": {"type": "string"},
                "shortTitle": {"type": "string"},
                "issn": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "UpdateJournalRequest": {
            "type": "object",
            "properties": {
                "title": {"type": "string"},
                "shortTitle": {"type": "string"},
                "issn": {"type": "string"},
                "description": {"type": "string"}
            }
        },
        "CreateVolumeRequest": {
            "type": "object",
            "required": ["volumeNumber", "year"],
            "properties": {
                "volumeNumber": {"type": "integer"},
                "year": {"type": "integer"},
                "title": {"type": "string"}
            }
        },
        "CreateIssueRequest": {
            "type": "object",
            "required": ["issueNumber"],
            "properties": {
                "issueNumber": {"type": "integer"},
                "title": {"type": "string"},
                "publishedOn": {"type": "string", "format": "date"}
            }
        },
        "PlacementRequest": {
            "type": "object",
            "required": ["journalId"],
            "properties": {
                "journalId": {"type": "string"},
                "volumeId": {"type": "string"},
                "issueId": {"type": "string"},
                "isSpecialIssue": {"type": "boolean"}
            }
        },
        "CreateArticleRequest": {
            "type": "object",
            "required": ["title", "slug", "placement"],
            "properties": {
                "title": {"type": "string"},
                "slug": {"type": "string"},
                "type": {"type": "string"},
                "doi": {"type": "string"},
                "abstract": {"type": "string"},
                "keywords": {"type": "array", "items": {"type": "string"}},
                "placement": {"$ref": "#/definitions/PlacementRequest"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"}
            }
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "ResponseEnvelope": {
            "type": "object",
            "properties": {
                "data": {"type": "object"},
                "error": {"$ref": "#/definitions/APIError"},
                "pagination": {"$ref": "#/definitions/Pagination"},
                "meta": {"type": "object"}
            }
        }
    }
}`

type swaggerDoc struct{}

// ReadDoc returns the Swagger document.
func (s *swaggerDoc) ReadDoc() string {
	return docTemplate
}

func init() {
	swag.Register(swag.Name, &swaggerDoc{})
}
