// Copyright 2025 Raywall Malheiros de Souza
// Licensed under the Mozilla Public License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//	https://www.mozilla.org/en-US/MPL/2.0/
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
//
// Package envloader carrega variáveis de ambiente para campos de uma struct Go
// usando as tags `env` e `envDefault`.
//
// Ele é a última camada da configuração do serviço: os arquivos YAML são lidos
// primeiro e o envloader aplica as variáveis de ambiente por cima, completando
// com os valores padrão apenas os campos que continuaram vazios.
//
// Funcionalidades:
//   - Mapeamento por tag: `env:"VAR_NAME"`; a opção `required` (`env:"VAR,required"`)
//     retorna MissingVarError quando não há valor nem padrão.
//   - Valores padrão: `envDefault:"value"`, aplicados somente a campos com zero value.
//   - Tipos: string, int*, uint*, bool, float*, time.Duration, structs aninhadas e
//     ponteiros para structs.
//   - Erros tipados: InvalidConfigError, FieldError, MissingVarError, UnsupportedTypeError.
//
// Exemplo:
//
//	type Config struct {
//		Port    int           `env:"PORT" envDefault:"3000"`
//		Timeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"10s"`
//	}
//
//	var cfg Config
//	if err := envloader.Load(&cfg); err != nil {
//		log.Fatal(err)
//	}
package envloader
