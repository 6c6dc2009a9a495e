package documents

import "github.com/JaimeStill/courier/pkg/openapi"

var schemas = map[string]*openapi.Schema{
	"Document": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":               {Type: "string", Format: "uuid"},
			"barcode":          {Type: "string", Example: "IN-2025-007"},
			"type":             {Type: "string", Enum: []any{"incoming", "outgoing"}},
			"subject":          {Type: "string"},
			"sender":           {Type: "string"},
			"receiver":         {Type: "string"},
			"priority":         {Type: "string", Enum: []any{"normal", "urgent", "very_urgent"}},
			"document_date":    {Type: "string", Format: "date-time"},
			"notes":            {Type: "string"},
			"created_by":       {Type: "string"},
			"attachments":      openapi.ArrayOf("Attachment"),
			"attachment_count": {Type: "integer"},
			"created_at":       {Type: "string", Format: "date-time"},
			"updated_at":       {Type: "string", Format: "date-time"},
		},
	},
	"DocumentPage": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"data":        openapi.ArrayOf("Document"),
			"total":       {Type: "integer"},
			"page":        {Type: "integer"},
			"page_size":   {Type: "integer"},
			"total_pages": {Type: "integer"},
		},
	},
	"DocumentSearch": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"page":      {Type: "integer"},
			"page_size": {Type: "integer"},
			"search":    {Type: "string"},
			"sort":      {Type: "string"},
			"type":      {Type: "string"},
			"priority":  {Type: "string"},
			"sender":    {Type: "string"},
			"receiver":  {Type: "string"},
			"barcode":   {Type: "string", Description: "Barcode prefix"},
			"after":     {Type: "string", Format: "date-time"},
			"before":    {Type: "string", Format: "date-time"},
		},
	},
	"DocumentCreate": {
		Type:        "object",
		Description: "Receiver may also be sent as recipient or to; subject as title; sender as from.",
		Properties: map[string]*openapi.Schema{
			"type":          {Type: "string", Enum: []any{"incoming", "outgoing"}},
			"subject":       {Type: "string"},
			"sender":        {Type: "string"},
			"receiver":      {Type: "string"},
			"priority":      {Type: "string", Description: "normal, urgent, very_urgent, or the Arabic label"},
			"document_date": {Type: "string", Format: "date-time"},
			"notes":         {Type: "string"},
		},
		Required: []string{"type", "subject"},
	},
	"Attachment": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":         {Type: "string", Format: "uuid"},
			"name":       {Type: "string"},
			"size":       {Type: "integer"},
			"type":       {Type: "string"},
			"url":        {Type: "string"},
			"key":        {Type: "string"},
			"bucket":     {Type: "string"},
			"storage":    {Type: "string"},
			"hash":       {Type: "string", Example: "blake3:af1349b9..."},
			"created_at": {Type: "string", Format: "date-time"},
		},
		Required: []string{"url"},
	},
	"AttachmentList": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"attachments":      openapi.ArrayOf("Attachment"),
			"attachment_count": {Type: "integer"},
		},
	},
	"Preview": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"url":        {Type: "string"},
			"name":       {Type: "string"},
			"type":       {Type: "string"},
			"expires_at": {Type: "string", Format: "date-time"},
		},
	},
	"Placement": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"x":                {Type: "number"},
			"y":                {Type: "number"},
			"width":            {Type: "number"},
			"height":           {Type: "number"},
			"container_width":  {Type: "number"},
			"container_height": {Type: "number"},
		},
		Required: []string{"x", "y", "width", "height", "container_width", "container_height"},
	},
	"StampCommand": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"index":    {Type: "integer"},
			"page":     {Type: "integer", Description: "1-based page, default first"},
			"kind":     {Type: "string", Enum: []any{"signature", "stamp"}},
			"position": openapi.SchemaRef("Placement"),
		},
		Required: []string{"kind", "position"},
	},
	"TimelineEntry": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"id":         {Type: "string", Format: "uuid"},
			"barcode":    {Type: "string"},
			"message":    {Type: "string"},
			"actor":      {Type: "string"},
			"created_at": {Type: "string", Format: "date-time"},
		},
	},
	"TimelineCommand": {
		Type: "object",
		Properties: map[string]*openapi.Schema{
			"note": {Type: "string"},
			"at":   {Type: "string", Format: "date-time", Description: "Client timestamp of an optimistic entry"},
		},
		Required: []string{"note"},
	},
}
