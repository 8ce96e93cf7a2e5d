// Package sap contains the SAP Business One integration bounded context.
// This context manages the Service Layer gateway and the asynchronous
// posting queue that pushes approved warehouse documents into SAP B1.
//
// Key concepts:
//   - ServiceLayer: Port interface for the SAP B1 Service Layer (login, serial
//     validation, stock checks, document posting)
//   - PostingJob: Entity representing a queued posting attempt with bounded
//     retry and dead-lettering
//   - Document payloads: Value objects mirroring the Service Layer JSON
//     contracts (PurchaseDeliveryNotes, StockTransfers, PickLists, Invoices, Drafts)
//
// Design Pattern: Ports & Adapters
//   - Ports (interfaces) are defined here in the domain layer
//   - Adapters (HTTP client, offline stub) are in the infrastructure layer
package sap
