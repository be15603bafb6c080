// Copyright 2026 The Staticforge Authors
// SPDX-License-Identifier: Apache-2.0

// Package objstore abstracts the output store that published
// artifacts land in. A local directory and an S3/MinIO-compatible
// bucket are interchangeable implementations; the pipeline only
// needs Exists, Put, and Get.
//
// Object names are content-hashed, so a name is never reused for
// different bytes. Both backends exploit that: an existing object
// under the requested name short-circuits the write, and concurrent
// puts of the same name are safe to race because both writers carry
// equivalent bytes.
package objstore
