// Package docs provides generated OpenAPI documentation.
//
// Rootplanner API
//
//	@title			Rootplanner API
//	@version		1.0
//	@description	Home-visit route planning relay. Case details are sent to an Azure OpenAI deployment and the visit schedule is extracted from the reply.
//
//	@contact.name	API Support
//	@contact.url	https://github.com/qpig0218/Rootplanner
//
//	@host		localhost:3000
//	@BasePath	/
//
//	@schemes	http https
package docs

//go:generate swag init -g doc.go -d ./,../internal/server/endpoints -o ./swagger --parseDependency --parseInternal
