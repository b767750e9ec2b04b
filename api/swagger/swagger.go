package swagger

import "github.com/swaggo/swag"

const docTemplate = `{
    "swagger": "2.0",
    "info": {
        "title": "Pillar Academy API",
        "description": "Progression and entitlement engine for the gated pillar curriculum",
        "version": "1.0.0"
    },
    "basePath": "/api/v1",
    "schemes": [
        "http"
    ],
    "securityDefinitions": {
        "BearerAuth": {"type": "apiKey", "name": "Authorization", "in": "header"}
    },
    "tags": [
        {"name": "Authentication", "description": "Account registration and token lifecycle"},
        {"name": "Learners", "description": "Profile and admin learner listing"},
        {"name": "Entitlements", "description": "Premium activation and view verdicts"},
        {"name": "Pillars", "description": "Curriculum overview, module completion and advancement"},
        {"name": "Exams", "description": "Exam wizard and admin grading"},
        {"name": "Specializations", "description": "Post-curriculum tracks and global progress"},
        {"name": "AccessRequests", "description": "Legacy manual approval path"},
        {"name": "Reports", "description": "Asynchronous exam-audit exports"},
        {"name": "System", "description": "Probes and runtime metrics"}
    ],
    "paths": {
        "/auth/register": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Register learner account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RegisterRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Email already registered"}
                }
            }
        },
        "/auth/login": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Authenticate account",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/LoginRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "401": {"description": "Invalid credentials"}
                }
            }
        },
        "/auth/refresh": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Rotate refresh token",
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/RefreshTokenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/auth/logout": {
            "post": {
                "tags": ["Authentication"],
                "summary": "Revoke refresh token",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/auth/password": {
            "put": {
                "tags": ["Authentication"],
                "summary": "Change password",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ChangePasswordRequest"}}
                ],
                "responses": {
                    "204": {"description": "No Content"}
                }
            }
        },
        "/me": {
            "get": {
                "tags": ["Learners"],
                "summary": "Current profile with progress snapshot",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/learners": {
            "get": {
                "tags": ["Learners"],
                "summary": "List learners (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "role", "in": "query", "type": "string"},
                    {"name": "tier", "in": "query", "type": "string"},
                    {"name": "search", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/entitlements/invite": {
            "post": {
                "tags": ["Entitlements"],
                "summary": "Redeem invite code",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/InviteActivationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Upgraded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Code already redeemed"}
                }
            }
        },
        "/entitlements/payment": {
            "post": {
                "tags": ["Entitlements"],
                "summary": "Record payment outcome",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/PaymentActivationRequest"}}
                ],
                "responses": {
                    "200": {"description": "Upgraded", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "402": {"description": "Payment not confirmed"}
                }
            }
        },
        "/invite-codes": {
            "post": {
                "tags": ["Entitlements"],
                "summary": "Issue invite code",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": false, "schema": {"$ref": "#/definitions/InviteIssueRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "403": {"description": "Issuance disabled"}
                }
            }
        },
        "/pillars": {
            "get": {
                "tags": ["Pillars"],
                "summary": "Curriculum overview",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/pillars/{index}/view": {
            "get": {
                "tags": ["Entitlements"],
                "summary": "Pillar view verdict",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ViewDecision"}}
                }
            }
        },
        "/pillars/{index}/advance": {
            "post": {
                "tags": ["Pillars"],
                "summary": "Advance past a pillar",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/AdvanceResult"}},
                    "412": {"description": "Modules incomplete"}
                }
            }
        },
        "/modules/{id}/complete": {
            "post": {
                "tags": ["Pillars"],
                "summary": "Complete a module",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "204": {"description": "No Content"},
                    "402": {"description": "Upgrade required"},
                    "403": {"description": "Pillar locked"}
                }
            }
        },
        "/exams/attempts": {
            "post": {
                "tags": ["Exams"],
                "summary": "Start or resume exam attempt",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/StartAttemptRequest"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Submission pending review"}
                }
            }
        },
        "/exams/attempts/{index}/acknowledge": {
            "post": {
                "tags": ["Exams"],
                "summary": "Acknowledge intro",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/attempts/{index}/answers": {
            "post": {
                "tags": ["Exams"],
                "summary": "Answer quiz question",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/AnswerRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/attempts/{index}/written": {
            "post": {
                "tags": ["Exams"],
                "summary": "Submit written answer",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "integer"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/WrittenRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "400": {"description": "Written answer too short"}
                }
            }
        },
        "/exams/attempts/{index}/submit": {
            "post": {
                "tags": ["Exams"],
                "summary": "Submit exam",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "index", "in": "path", "required": true, "type": "integer"}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/status": {
            "get": {
                "tags": ["Exams"],
                "summary": "Latest submission status for a pillar",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "pillar", "in": "query", "required": true, "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams": {
            "get": {
                "tags": ["Exams"],
                "summary": "List submissions (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "page", "in": "query", "type": "integer"},
                    {"name": "page_size", "in": "query", "type": "integer"},
                    {"name": "learner_id", "in": "query", "type": "string"},
                    {"name": "pillar", "in": "query", "type": "integer"},
                    {"name": "status", "in": "query", "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/exams/{id}/grade": {
            "post": {
                "tags": ["Exams"],
                "summary": "Grade submission (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"},
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/GradeRequest"}}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "409": {"description": "Already graded"}
                }
            }
        },
        "/specializations": {
            "get": {
                "tags": ["Specializations"],
                "summary": "List tracks with per-track completion",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/specializations/{id}/choose": {
            "post": {
                "tags": ["Specializations"],
                "summary": "Choose a track",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}},
                    "412": {"description": "Pillars incomplete"}
                }
            }
        },
        "/progress": {
            "get": {
                "tags": ["Specializations"],
                "summary": "Global two-band progress",
                "security": [{"BearerAuth": []}],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/access-requests": {
            "post": {
                "tags": ["AccessRequests"],
                "summary": "Create access request",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/CreateAccessRequestPayload"}}
                ],
                "responses": {
                    "201": {"description": "Created", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            },
            "get": {
                "tags": ["AccessRequests"],
                "summary": "List access requests (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "learner_id", "in": "query", "type": "string"},
                    {"name": "limit", "in": "query", "type": "integer"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/exams": {
            "post": {
                "tags": ["Reports"],
                "summary": "Enqueue exam audit report (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "payload", "in": "body", "required": true, "schema": {"$ref": "#/definitions/ReportRequest"}}
                ],
                "responses": {
                    "202": {"description": "Accepted", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/{id}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Report job status (admin)",
                "security": [{"BearerAuth": []}],
                "parameters": [
                    {"name": "id", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "OK", "schema": {"$ref": "#/definitions/ResponseEnvelope"}}
                }
            }
        },
        "/reports/download/{token}": {
            "get": {
                "tags": ["Reports"],
                "summary": "Download report artifact",
                "parameters": [
                    {"name": "token", "in": "path", "required": true, "type": "string"}
                ],
                "responses": {
                    "200": {"description": "File stream"},
                    "410": {"description": "Link expired"}
                }
            }
        }
    },
    "definitions": {
        "RegisterRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "full_name": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "full_name", "password"]
        },
        "LoginRequest": {
            "type": "object",
            "properties": {
                "email": {"type": "string"},
                "password": {"type": "string"}
            },
            "required": ["email", "password"]
        },
        "RefreshTokenRequest": {
            "type": "object",
            "properties": {
                "refresh_token": {"type": "string"}
            },
            "required": ["refresh_token"]
        },
        "ChangePasswordRequest": {
            "type": "object",
            "properties": {
                "old_password": {"type": "string"},
                "new_password": {"type": "string"}
            },
            "required": ["old_password", "new_password"]
        },
        "InviteActivationRequest": {
            "type": "object",
            "properties": {
                "code": {"type": "string"}
            },
            "required": ["code"]
        },
        "InviteIssueRequest": {
            "type": "object",
            "properties": {
                "issued_to": {"type": "string"}
            }
        },
        "PaymentActivationRequest": {
            "type": "object",
            "properties": {
                "reference": {"type": "string"},
                "status": {"type": "string", "enum": ["CONFIRMED", "FAILED"]}
            },
            "required": ["reference", "status"]
        },
        "ViewDecision": {
            "type": "object",
            "properties": {
                "pillar_index": {"type": "integer"},
                "viewable": {"type": "boolean"},
                "reason": {"type": "string"}
            }
        },
        "AdvanceResult": {
            "type": "object",
            "properties": {
                "action": {"type": "string", "enum": ["PROCEED", "EXAM_REQUIRED", "UPGRADE_REQUIRED"]},
                "pillar_index": {"type": "integer"},
                "next_pillar": {"type": "integer"}
            }
        },
        "StartAttemptRequest": {
            "type": "object",
            "properties": {
                "pillar_index": {"type": "integer"}
            },
            "required": ["pillar_index"]
        },
        "AnswerRequest": {
            "type": "object",
            "properties": {
                "option": {"type": "integer"}
            }
        },
        "WrittenRequest": {
            "type": "object",
            "properties": {
                "text": {"type": "string"}
            },
            "required": ["text"]
        },
        "GradeRequest": {
            "type": "object",
            "properties": {
                "outcome": {"type": "string", "enum": ["APPROVED", "REJECTED"]},
                "feedback": {"type": "string"}
            },
            "required": ["outcome"]
        },
        "CreateAccessRequestPayload": {
            "type": "object",
            "properties": {
                "current_pillar": {"type": "integer"},
                "requested_pillar": {"type": "integer"}
            },
            "required": ["requested_pillar"]
        },
        "ReportRequest": {
            "type": "object",
            "properties": {
                "learnerId": {"type": "string"},
                "pillarIndex": {"type": "integer"},
                "status": {"type": "string"},
                "format": {"type": "string", "enum": ["csv", "pdf"]}
            },
            "required": ["format"]
        },
        "Pagination": {
            "type": "object",
            "properties": {
                "page": {"type": "integer"},
                "page_size": {"type": "integer"},
                "total_count": {"type": "integer"}
            }
        },
        "APIError": {
            "type": "object",
            "properties": {
                "code": {"type": "string"},
                "message": {"type": "string"},
                "status": {"type": "integer"}
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
