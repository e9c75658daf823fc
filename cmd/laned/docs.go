package main

// General API documentation for swaggo. Run `make swagger-gen` to generate docs.
//
// @title           laned API
// @version         1.0
// @description     HTTP API for the exclusive inference-lane arbiter.
//
// @contact.name   laned maintainers
// @contact.url    https://github.com/your-org/laned
//
// @license.name   MIT
// @license.url    https://opensource.org/licenses/MIT
//
// @BasePath  /
//
// @schemes http
