// Package http serves the item pages as server rendered HTML.
//
// The router exposes the following endpoints:
//   - GET /validation/v2/items: item list.
//   - GET /validation/v2/items/{itemId}: item details. `?status=true` shows the
//     saved banner after a redirect from the add form.
//   - GET, POST /validation/v2/items/add: add form. A valid submission redirects
//     with 302 to the details page; an invalid one renders the form again with
//     the submitted values and localized failure messages.
//   - GET, POST /validation/v2/items/{itemId}/edit: edit form, validated the same
//     way as the add form. A valid submission redirects to the details page.
//   - GET /healthz: returns 200 when storage answers a ping, 503 otherwise.
//
// A malformed {itemId} renders the 400 page and an unknown one the 404 page.
// Messages follow the locale negotiated from Accept-Language by Localize.
package http
