/*
Package mockapi provides an in-memory mock of the EcoAction backend.

It honors the contract the real backend exposes: GET/POST on the users,
missions, and participations collections, PATCH on single missions and
participations, equality filters on the indexed fields (email, category,
userId, missionId, status), and the free-text q filter over mission title,
city, and description.

The server is used by package tests throughout the module and by the
`ecoaction mock-server` command for local development. It is not a
specification of the real backend's behavior beyond that contract.
*/
package mockapi
