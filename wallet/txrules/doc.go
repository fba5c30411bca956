// Copyright (c) 2015 The btcsuite developers
// Copyright (c) 2015 The Decred developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

/*
Package txrules provides functions that help establish whether or not an
output abides by the non-consensus rules of a default mempool, and how fees
are charged for a transaction of a given weight.

Dust

An output is dust when spending it would cost more than a third of its value
at the relay fee rate. The cost is the serialized output plus a typical input
spending it, with witness programs receiving the witness discount on the
signature and public key.

Fees

Fees are charged per whole virtual byte: the weight is divided by four and
rounded up before being multiplied by the fee rate.
*/
package txrules
