// Copyright (c) 2025 The btcsuite developers
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package engine

// Signed transactions the engine must reproduce byte for byte.
const (
	scenarioATx = "" +
		"02000000017be4e642bb278018ab12277de9427773ad1c5f5b1d164a157e0d99" +
		"aa48dc1c1e000000006a473044022078eda020d4b86fcb3af78ef919912e6d79" +
		"b81164dbbb0b0b96da6ac58a2de4b102201a5fd8d48734d5a02371c4b5ee551a" +
		"69dca3842edbf577d863cf8ae9fdbbd4590121036666dd712e05a487916384bf" +
		"cd5973eb53e8038eccbbf97f7eed775b87389536ffffffff01c0aff629010000" +
		"001976a9145eaaa4f458f9158f86afcba08dd7448d27045e3d88ac00000000"

	p2trFundTx = "" +
		"02000000013ab533f8709accfffd1de4fa29b6584ec78f5a2f23947c938f835a" +
		"3e916305c5000000006b48304502210086ab2c2192e2738529d6cd9604d8ee75" +
		"c5b09b0c2f4066a5c5fa3f87a26c0af602202afc7096aaa992235c43e7121460" +
		"57b5ed6a776d82b9129620bc5a21991c0a5301210351e003fdc48e7f31c9bc94" +
		"996c91f6c3273b7ef4208a1686021bedf7673bb058ffffffff01c0aff6290100" +
		"0000225120e01cfdd05da8fa1d71f987373f3790d45dea9861acb0525c86656f" +
		"e50f4397a600000000"

	p2trSpendTx = "" +
		"02000000000101ac6058397e18c277e98defda1bc38bdf3ab304563d7df7afed" +
		"0ca5f63220589a0000000000ffffffff01806de72901000000225120a5c02785" +
		"7e359d19f625e52a106b8ac6ca2d6a8728f6cf2107cd7958ee0787c20140ec2d" +
		"3910d41506b60aaa20520bb72f15e2d2cbd97e3a8e26ee7bad5f4c56b0f2fb0c" +
		"eaddac33cb2813a33ba017ba6b1d011bab74a0426f12a2bcf47b4ed5bc860000" +
		"0000"

	stakeTx = "" +
		"02000000000101f29e073986649ca2c5b9896d9cc606790df58587d4a267e9f9" +
		"0610bc4bffe8690200000000fdffffff0330750000000000002251206be6aea6" +
		"6b20c80a52d9ad36a7b2a9ebaf0300c973fce164dc2a5b411e894cce00000000" +
		"00000000496a4762626434009789cdd12bc90bbd73445718f8a709956eb3cce3" +
		"62716a3425610abb75ea113203d5a0bb72d71993e435d6c5a70e2aa4db500a62" +
		"cfaae33c56050deefee64ec003e833220000000000002251205d1b83f2e2991c" +
		"2d80226a54d89255768a77905d63d0d5f51d18476143f90a8e014089aa8cd80f" +
		"6edc7552ff431108873ba3d59c9ff359c4ecbded26748f8b616e9467ead4f306" +
		"1310831a863b59f7a62741add206bce82a5fb14c779526bd5b91240a4a0300"

	unbondTx = "" +
		"020000000001011b5e097a62ce617aa945dc062409f6b408e734d20b35333971" +
		"4c321e5a5442090000000000ffffffff0178690000000000002251206a19e05b" +
		"f781849787564097f8986b84270b35f6dead370b0846b0c6ff4b0a5f0640f5c0" +
		"8530d9f48ab1b3bc2e3f5fed043a82cbcdf1f10af4b1774ac943392af108f6fd" +
		"071157474505dea939ede9f7b07157e7274fb53e5b3d6e88f6fb1d23e7900040" +
		"57f09c746aa784e4aebe8002d9068755f7d22262af71fdb75a840793fab6871e" +
		"5ab387081dd6e31dd0e1ddfdfa11e298469321171eba722e79efaf2dbdb89905" +
		"40f3f6ff2a8b1aaf43cc7f6bb40b3ccf1aca14dd190a70f06528f594d26281e5" +
		"c1afb792c454b5e9eda5e8f1a2723ebe463c5cf559710a9dbde6f4c329f1a64e" +
		"c98a209789cdd12bc90bbd73445718f8a709956eb3cce362716a3425610abb75" +
		"ea1132ad2017921cf156ccb4e73d428f996ed11b245313e37e27c978ac4d2cc2" +
		"1eca4672e4ac2049766ccd9e3cd94343e2040474a77fb37cdfd30530d05f9f1e" +
		"96ae1e2102c86eba2076d1ae01f8fb6bf30108731c884cddcf57ef6eef2d9d95" +
		"59e130894e0e40c62cba529c61c050929b74c1a04954b78b4b6035e97a5e078a" +
		"5a0f28ec96d547bfee9ace803ac01a868c60f4ea18d9593a742735d726a3c635" +
		"69a36fd50fe15d291fd1e3538429e494fdcafb7ee38a6636ab068f83d359e89a" +
		"f3b37ad3ed15b32354917f72254900000000"

	withdrawUnbondingTx = "" +
		"0200000000010177fe6352298524b23a9cd89966633a5a9d7aa291c23e8a5ff4" +
		"96394c4ce3f7d700000000000500000001d9680000000000002251205d1b83f2" +
		"e2991c2d80226a54d89255768a77905d63d0d5f51d18476143f90a8e03402856" +
		"dd1927e5f95fdc45346261f17455130244f5d3db225ceaef292ed233b66104fe" +
		"a4eb343f7f9ee99a8ee6d67b4e5a95d660bf0299b67d37a96e08e6839be82420" +
		"9789cdd12bc90bbd73445718f8a709956eb3cce362716a3425610abb75ea1132" +
		"ad55b241c050929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547bfee" +
		"9ace803ac0e494fdcafb7ee38a6636ab068f83d359e89af3b37ad3ed15b32354" +
		"917f72254900000000"

	withdrawStakingTx = "" +
		"02000000000101f29e073986649ca2c5b9896d9cc606790df58587d4a267e9f9" +
		"0610bc4bffe869000000000096000000019e740000000000002251205d1b83f2" +
		"e2991c2d80226a54d89255768a77905d63d0d5f51d18476143f90a8e03406419" +
		"92c74bd77bac866fe4a3daa0ac85829f2defceba9acfae6e50a850bb1658518a" +
		"abf9a12f57ddca77d272b6079248d17bfb0f91df374aa989c6483586ca8f2620" +
		"9789cdd12bc90bbd73445718f8a709956eb3cce362716a3425610abb75ea1132" +
		"ad029600b261c050929b74c1a04954b78b4b6035e97a5e078a5a0f28ec96d547" +
		"bfee9ace803ac08cec39f47bbd70eeda791f6b48a4bf906e878c87f6e5ca3f65" +
		"0008f39f1d4a51e77ab126d8d0a6c6ca6c2f1c0d31141352fb95112aa2bbd439" +
		"0a7e4481e3d8dc00000000"

	zcashSaplingTx = "" +
		"0400008085202f890153685b8809efc50dd7d5cb0906b307a1b8aa5157baa5fc" +
		"1bd6fe2d0344dd193a000000006b483045022100ca0be9f37a4975432a52bb65" +
		"b25e483f6f93d577955290bb7fb0060a93bfc92002203e0627dff004d3c72a95" +
		"7dc9f8e4e0e696e69d125e4d8e275d119001924d3b48012103b243171fae5516" +
		"d1dc15f9178cfcc5fdc67b0a883055c117b01ba8af29b953f6ffffffff014072" +
		"0700000000001976a91449964a736f3713d64283fd0018626ba50091c7e988ac" +
		"00000000000000000000000000000000000000"

	zcashTexTx = "" +
		"0400008085202f8901f20e21455bc26f644d71b86576796e2fa060bc109142a3" +
		"6c93e99df8d26edad0000000006b483045022100850a98be0d1a432f900bb3c3" +
		"4347d16ea839d4a59de288c17838f1d2ee6ec390022007e5fd53c8c31d75ca6d" +
		"79b3d2874e6dd8e685e60758874e4884ace9d26eea4501210340643a2a4ea077" +
		"7ce0b2529be566a3caea5598fef56c44579dadf96b586bed50ffffffff02400d" +
		"0300000000001976a914ef05a418e5329d8b7348839ace8953494d18672688ac" +
		"30501b00000000001976a914b1e4e13f836a6e7a33cbb20817a62da829d543e9" +
		"88ac00000000000000000000000000000000000000"

	brc20CommitTx = "" +
		"02000000000101089098890d2653567b9e8df2d1fbe5c3c8bf1910ca7184e301" +
		"db0ad3b495c88e0100000000ffffffff02581b000000000000225120e8b706a9" +
		"7732e705e22ae7710703e7f589ed13c636324461afa443016134cc0510400000" +
		"00000000160014e311b8d6ddff856ce8e9a4e03bc6d4fe5050a83d0248304502" +
		"2100a44aa28446a9a886b378a4a65e32ad9a3108870bd725dc6105160bed4f31" +
		"7097022069e9de36422e4ce2e42b39884aa5f626f8f94194d1013007d5a1ea92" +
		"20a06dce0121030f209b6ada5edb42c77fd2bc64ad650ae38314c8f451f3e36d" +
		"80bc8e26f132cb00000000"

	brc20RevealTx = "" +
		"02000000000101b11f1782607a1fe5f033ccf9dc17404db020a0dedff9418359" +
		"6ee67ad4177d790000000000ffffffff012202000000000000160014e311b8d6" +
		"ddff856ce8e9a4e03bc6d4fe5050a83d03406a35548b8fa4620028e021a944c1" +
		"d3dc6e947243a7bfc901bf63fefae0d2460efa149a6440cab51966aa4f09faef" +
		"2d1e5efcba23ab4ca6e669da598022dbcfe35b0063036f726401011874657874" +
		"2f706c61696e3b636861727365743d7574662d3800377b2270223a226272632d" +
		"3230222c226f70223a227472616e73666572222c227469636b223a226f616466" +
		"222c22616d74223a223230227d6821c00f209b6ada5edb42c77fd2bc64ad650a" +
		"e38314c8f451f3e36d80bc8e26f132cb00000000"
)
