// Package webhookcreate implements a Discord bot for managing channel
// webhooks, along with server, color and lookup utilities.
//
// Key components of the package include:
//
//   - Bot: Connects to discord, routes interactions and manages startup
//     and shutdown.
//   - Commands: Handlers for every slash command the bot registers.
//   - Paginator: Runs paginated command responses. Each PaginationSession
//     tracks the page index and the user allowed to navigate, and strips
//     its controls after sitting idle.
//   - API: Backend API for monitoring the bot and browsing what it has
//     recorded.
//   - Database: Interaction, command and feedback logs, plus the admin
//     login.
//
// The bot supports these commands:
//
//   - /webhook: create, delete, list and send messages through webhooks.
//   - /bot: invite, uptime, help, info, stats, support and feedback, plus
//     the owner-only serverlist and leave.
//   - /roles, /roleinfo, /server, /user, /emoji: guild and member details.
//   - /colorinfo, /randomcolor: color conversions and accessibility info.
//   - /github, /shorten, /stock, /images, /scripts: third-party lookups.
//   - /ai: chat completions and image generation.
//
// Interactions are received over the gateway by default, or as HTTP
// requests when the webhook server is enabled.
package webhookcreate
