// Copyright (C) 2025 sage-x-project
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.

// SPDX-License-Identifier: LGPL-3.0-or-later

// Package dhparams holds SRD's three fixed Diffie-Hellman (generator, prime)
// pairs, indexed by key size. The values are domain constants: every SRD
// implementation must agree on them bit-for-bit, so they are copied in
// verbatim rather than generated at runtime.
package dhparams

import (
	"encoding/hex"
	"fmt"
	"math/big"

	"github.com/sage-x-project/srd/protoerr"
)

// Params is one (generator, prime) pair for a given key size.
type Params struct {
	KeySize   int
	Generator *big.Int
	Prime     *big.Int
}

const generatorHex = "0002"

const prime256Hex = "" +
	"a31c06bd463e3923bc1aadbde48b16976c080717373b819a068f32b7a6b38b6b38729647cfde" +
	"01c2ce28b26c57472737f5c3561a1761185bd8589a43ce0bba75891ff9ec60148d4bd4a09ee2" +
	"dc5c9331b4110ba93ac54afc14da3bdd19614774a2d55d295e5a35ab44b3efaea5129ba22b88" +
	"ba3e29766145fdeca3b08e38af53d7c4c60e3ad208ce5066441036e9f191e0b75036a77f65e2" +
	"eaa4752443233fbe8f8943bf956de595665c38ffff23827e17c10cdc1c27a028caae6c981062" +
	"6198ff778740f88ddcf102aeb81daee289c044c4a4571c4b6f287400f4b8e0b843f880c32d81" +
	"e91bdea04cd7a3819b32275fc3298af4c7ec87eb0099527d041ced5d"

const prime512Hex = "" +
	"e0fcd4ce4e3d0e3de091f21415bb7cd011fac288c42020a879f28c2a4387df9b6cf636ed8ac1" +
	"bab033b64f66feaba65f70e684731e3f39105605968d3a96380112b5a10f3a11e708dc541283" +
	"3c47ab7c368a21b9efe19293793ec879ce68301818a86e5a6c6977ddba0daca7fba5190f67ba" +
	"56ccdc1b3f31308972236c2e47763fdfec1371cedcdb8c190ca6ff8ad603f817edc0d93c2a68" +
	"7c7b36dd66e70f2a6100fc6343edc8c874496cb2f5bbfec88ea9b77c27304b37f70e94bc8a0f" +
	"bf500e0c957a80ebda87280ef58214d92f119811acdc3c671ef1e3913f94980a9e146ba89590" +
	"8550ef4234abb7503d436521aba54c7550edc0ef1202759fff90ff19128936814321ee59e111" +
	"e13e5e482870d58bb44d9cfbfccea78702aad18d4ceea91af0e022431de31bbe8d2745489a35" +
	"b75734afa2da43817d40e7e8d80d17a26cd4460b0055c521a3fa4329bd718db46d8f021c13f1" +
	"e2b0e7268b09d55e958d256e200a4e5de6eecbf8dc0ae65b35ae3faa1a5ac78fe2df68f99ebf" +
	"27ecee3cdd29f9cccf2de169062dbcec55c8ee69cdabddbccf3f4428c9b31b61df09db783833" +
	"d1eb75594ed2cbdf3a3906a831665447dd11f7c54759a48266adfbd78954f0071de0f8422d94" +
	"f6fb43091b986f58bac9506f9bfb821d62e69330410bb56f0085ecce89afb8f0bdbcab325d6e" +
	"11f2aaeb549f50a9d91fb8e64c814faa6853"

const prime1024Hex = "" +
	"e7b24b8d20316baaf061adbfe72c9d914d678cd5004d49356ec9949ba752777171ac368279cb" +
	"e6f5cbbc2ba8154883a9a29e5517d1f3c03cac4f39ce3225060b3efb799cd9c412746ae2a193" +
	"31b7b2627e663e25a7b001e4c0dcc5e21bc76c382dcdf5b284760c8e3fead91f7422cd76aa87" +
	"fc8f9851f3c1e4719cd0b8e4816dd4e88c72e528bedc797342c03fd7a346c4c7857ca03d4670" +
	"13b6493c455551e48a1423263b62b127b436106a68548a776a0f34d56b63e7c595f2b205dbe1" +
	"c393617a01f15a4cc063dae4f4d56b89bfbc8bcc9ae5387c38456f7c076356abadcc67b92ad7" +
	"77eb20fb9f8806e8649790a90615a46d22dd762e0c42615336745356c2e16147c0f3d46b40d5" +
	"147804bf8a0dfff35939a611c7f5a60ac107f33f33d6059f273d2079ab1d90f23777b341c45e" +
	"2a9b9bf6bfb71dc7d129f64f1b9406ed4f93ade8f56065f1b7321397b0d4a03e1ab2c54dd9af" +
	"99ce1ecbfb90c80a58886da95e1181a55703d96bd27d1b6ef55ca2e4d475b5276f2dbb85f7a6" +
	"459dceeb89c67b776fd3bb974452da3ed4ef1647e1733ec076919cab6156077ed9532e7c365a" +
	"cc425747e198b3e1468e0284f230153db8687d8ec23db079a5b67d72ca04174b3867b13e4ea9" +
	"945e798d87586cffbe8c545ab374454e403b1eb831501ebe89f3c3b02f3137bd7b46b996fac2" +
	"869848fb19d5314b3a5c2d4d03b58820460bf90d8d4ab2f120a3dec07d1adf039248787a7057" +
	"2ff70d40f0dc7a1dd210667d1293a1af0d2626cf90f24d15fe3f1e8ec36a9b98ca9e39c68561" +
	"73e8714cdc96fd6d4e919e0f9cf5bd19f2c335a03643a914283d2c8d1328006873b098784a08" +
	"3b49b448b3dc7412af3bec43c9caa096a9cdef326c1d8b39a526e844d324120f2aca4e98bfd3" +
	"91eb49701f77b04db367f145808a7e7014990ae36ebc529a4006173af6acd6dc9396f305ffc3" +
	"acd244930ac3c12c7884a671ea472eff956fa2d07df8177859685552ab1adb295469b17e49a9" +
	"f166d0c28c0974165040521df8c567dd83d3fc00a8de8a76690d30845c9fc17fa071c20d3444" +
	"8c21ed4970e1b27c1f07f9a19bcc3db5284f8d038d681739fed7e91d76f21ea5d5277feeb74a" +
	"82b4456ad57bfa783e748d256230eb9982bfe122dd1146c5cada6a57efc98144d20048b94cd6" +
	"9694ffa87ddd2672897b58558dc38b6074ee52de30fbb23d92623bdbc6690b51be79b4e9cf61" +
	"62fda9cad2a6fb267ef6092080f79754de19dfd8701986e97403b82468dea7f8271378c8f843" +
	"569fb165a614da54daacdb8861f451a0b7e3c27cdf8a099e113ca1afeb49ff3abf176ffa19c2" +
	"a2b4df19712ab14ce7070b53cb0e4b5b5f6e253e876990aeca2e2b2c149cde619eae3d7fe995" +
	"243b76a3417541aa02e6cd77e649ad8b281271f158fc964ca3f66cb04074d84d32ff62db"

var table map[int]Params

func init() {
	table = map[int]Params{
		256:  mustParams(256, prime256Hex),
		512:  mustParams(512, prime512Hex),
		1024: mustParams(1024, prime1024Hex),
	}
}

func mustParams(keySize int, primeHex string) Params {
	gBytes, err := hex.DecodeString(generatorHex)
	if err != nil {
		panic(fmt.Sprintf("dhparams: bad generator constant: %v", err))
	}
	pBytes, err := hex.DecodeString(primeHex)
	if err != nil {
		panic(fmt.Sprintf("dhparams: bad prime constant for key size %d: %v", keySize, err))
	}
	if len(pBytes) != keySize {
		panic(fmt.Sprintf("dhparams: prime for key size %d has %d bytes, want %d", keySize, len(pBytes), keySize))
	}
	return Params{
		KeySize:   keySize,
		Generator: new(big.Int).SetBytes(gBytes),
		Prime:     new(big.Int).SetBytes(pBytes),
	}
}

// Lookup returns the (generator, prime) pair for keySize, or ErrInvalidKeySize
// if keySize is not one of 256, 512 or 1024.
func Lookup(keySize int) (Params, error) {
	p, ok := table[keySize]
	if !ok {
		return Params{}, fmt.Errorf("dhparams: unsupported key size %d: %w", keySize, protoerr.ErrInvalidKeySize)
	}
	return p, nil
}

// GeneratorBytes returns the two-byte, leading-zero-extended wire form of the
// generator used for all three key sizes.
func GeneratorBytes() [2]byte {
	var out [2]byte
	b := table[256].Generator.Bytes()
	copy(out[2-len(b):], b)
	return out
}

// Supported reports whether keySize is one of the three supported sizes.
func Supported(keySize int) bool {
	_, ok := table[keySize]
	return ok
}
