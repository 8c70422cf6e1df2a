// @title           edify API
// @version         1.0
// @description     Run Edify's AI teaching tools and read generation history. Authenticate with a personal access token.
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerToken
// @in              header
// @name            Authorization
// @description     Type "Bearer" followed by a space and your API token. Example: "Bearer ed_xxx"
package api
